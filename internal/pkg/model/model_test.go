package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperty(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Property
	}{
		{"UpdateTime", uint64(1707671976), UpdateTime(1707671976)},
		{"Online", true, Online(true)},
		{"TimeToEmpty", int64(12345), TimeToEmpty(12345)},
		{"TimeToFull", int64(54321), TimeToFull(54321)},
		{"Percentage", float64(54.22), Percentage(54.22)},
		{"IsPresent", false, IsPresent(false)},
		{"State", uint32(2), BatteryState(2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseProperty(tc.name, tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseProperty_UnknownName(t *testing.T) {
	_, err := ParseProperty("SomeBadKey", uint32(2))
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestParseProperty_TypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"UpdateTime", true},
		{"Online", "yes"},
		{"TimeToEmpty", uint64(12345)},
		{"Percentage", float32(54.22)},
		{"State", int64(2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProperty(tc.name, tc.value)
			assert.ErrorIs(t, err, ErrTypeMismatch)
			assert.ErrorContains(t, err, tc.name)
		})
	}
}

func TestPropertyRendering(t *testing.T) {
	tests := []struct {
		property Property
		want     string
	}{
		{UpdateTime(1707671976), "2024-02-11T17:19:36Z"},
		{UpdateTime(0), "1970-01-01T00:00:00Z"},
		{Online(true), "true"},
		{Online(false), "false"},
		{IsPresent(false), "false"},
		{TimeToEmpty(-5), "00:00:00"},
		{TimeToEmpty(0), "00:00:00"},
		{TimeToEmpty(59), "00:00:59"},
		{TimeToEmpty(12345), "03:25:45"},
		{TimeToFull(54321), "15:05:21"},
		{Percentage(54.22), "54.22"},
		{Percentage(100), "100"},
		{BatteryState(0), "Unknown"},
		{BatteryState(1), "Charging"},
		{BatteryState(2), "Discharging"},
		{BatteryState(3), "Empty"},
		{BatteryState(4), "FullyCharged"},
		{BatteryState(5), "PendingCharge"},
		{BatteryState(6), "PendingDischarge"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.property.String())
		})
	}
}

func TestBatteryState_PanicsOnUnknownCode(t *testing.T) {
	assert.Panics(t, func() {
		_ = BatteryState(7).String()
	})
}

func TestPropertyNames(t *testing.T) {
	want := []string{"UpdateTime", "Online", "TimeToEmpty", "TimeToFull", "Percentage", "IsPresent", "State"}
	assert.Equal(t, want, PropertyNames())
}
