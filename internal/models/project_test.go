package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Pump.fun", want: "pump-fun"},
		{in: "pvp.trade", want: "pvp-trade"},
		{in: "Sui Network", want: "sui-network"},
		{in: "PUMP FUN", want: "pump-fun"},
		{in: "Defi App", want: "defi-app"},
		{in: "a..b", want: "a--b"}, // runs are not collapsed
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestIsInfrastructure(t *testing.T) {
	assert.True(t, Project{Category: CategoryL1}.IsInfrastructure())
	assert.True(t, Project{Category: CategoryL2}.IsInfrastructure())
	assert.True(t, Project{Category: CategoryL3}.IsInfrastructure())
	assert.False(t, Project{Category: CategoryApplication}.IsInfrastructure())
	assert.False(t, Project{Category: CategoryStablecoins}.IsInfrastructure())
}

func TestScoreMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Score(1039))
	require.NoError(t, err)
	assert.Equal(t, "1039", string(b))

	b, err = json.Marshal(Score(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(Score(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestEnrichedProjectOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(EnrichedProject{Project: Project{Name: "X", Category: CategoryL1}})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "fdv")
	assert.NotContains(t, m, "ecosystemRevenue")
	assert.Contains(t, m, "annualizedRevenue")
}
