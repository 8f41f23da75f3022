package features_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscore/features"
)

func TestDefaultSchema_OrderAndBounds(t *testing.T) {
	s := features.Default()

	names := s.Names()
	require.Len(t, names, 26)
	assert.Equal(t, features.Income, names[0])
	assert.Equal(t, features.PrevAddressMonthsCount, names[2])
	assert.Equal(t, features.DeviceDistinctEmails8w, names[23])
	assert.Equal(t, features.Month, names[25])

	age := s.MustDescribe(features.CustomerAge)
	assert.Equal(t, features.Integer, age.Type)
	assert.Equal(t, 10.0, age.Min)
	assert.Equal(t, 90.0, age.Max)

	velocity := s.MustDescribe(features.Velocity6h)
	assert.Equal(t, -175.0, velocity.Min)
	assert.Equal(t, 16818.0, velocity.Max)
}

func TestDefaultSchema_Sentinels(t *testing.T) {
	s := features.Default()

	prev := s.MustDescribe(features.PrevAddressMonthsCount)
	assert.Equal(t, features.SentinelValue, prev.Missing)
	assert.True(t, prev.IsMissing(-1))
	assert.False(t, prev.IsMissing(0))
	assert.True(t, prev.InRange(prev.Sentinel))

	balcon := s.MustDescribe(features.IntendedBalconAmount)
	assert.True(t, balcon.IsMissing(-16))
	assert.False(t, balcon.IsMissing(0))

	assert.False(t, s.MustDescribe(features.CustomerAge).IsMissing(10))
}

func TestDefaultSchema_DeviceEmailsIsReal(t *testing.T) {
	def := features.Default().MustDescribe(features.DeviceDistinctEmails8w)

	assert.Equal(t, features.Real, def.Type)
	assert.Equal(t, 0.1, def.Step)
	assert.Equal(t, -1.0, def.Min)
	assert.Equal(t, 2.0, def.Max)
}

func TestSchema_DescribeUnknown(t *testing.T) {
	_, err := features.Default().Describe("favourite_colour")

	var unknown *features.UnknownFeatureError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "favourite_colour", unknown.Name)
	assert.Panics(t, func() { features.Default().MustDescribe("favourite_colour") })
}

func TestSchema_AllReturnsCopy(t *testing.T) {
	s := features.Default()
	defs := s.All()
	defs[0].Max = 100

	assert.Equal(t, 1.0, s.MustDescribe(features.Income).Max)
	assert.Equal(t, 4, s.Index(features.CustomerAge))
	assert.Equal(t, -1, s.Index("nope"))
}

func TestNewSchema_Rejects(t *testing.T) {
	tests := []struct {
		name string
		defs []features.Definition
	}{
		{name: "empty", defs: nil},
		{name: "no name", defs: []features.Definition{{Min: 0, Max: 1}}},
		{name: "duplicate", defs: []features.Definition{{Name: "a", Max: 1}, {Name: "a", Max: 1}}},
		{name: "inverted bounds", defs: []features.Definition{{Name: "a", Min: 2, Max: 1}}},
		{name: "sentinel outside", defs: []features.Definition{{Name: "a", Min: 0, Max: 1, Missing: features.SentinelValue, Sentinel: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := features.NewSchema(tt.defs...)
			assert.Error(t, err)
		})
	}
}
