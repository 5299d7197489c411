package validation_test

import (
	"errors"
	"testing"

	"fieldbook/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireNonEmpty(t *testing.T) {
	assert.NoError(t, validation.RequireNonEmpty("City Stadium", "Field name"))

	for _, value := range []string{"", "   ", "\t\n"} {
		err := validation.RequireNonEmpty(value, "Field name")
		require.Error(t, err)
		assert.Equal(t, "Field name is required", err.Error())
	}
}

func TestRequireIntegerInRange(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		min     *int
		max     *int
		want    int
		wantMsg string
	}{
		{name: "plain", value: "22", want: 22},
		{name: "padded", value: " 7 ", want: 7},
		{name: "negative without bounds", value: "-3", want: -3},
		{name: "at min", value: "1", min: validation.Bound(1), want: 1},
		{name: "below min", value: "0", min: validation.Bound(1), wantMsg: "Capacity must be at least 1"},
		{name: "above max", value: "101", max: validation.Bound(100), wantMsg: "Capacity must be at most 100"},
		{name: "max only ignores min", value: "-50", max: validation.Bound(100), want: -50},
		{name: "fraction", value: "2.5", min: validation.Bound(1), wantMsg: "Capacity must be an integer"},
		{name: "text", value: "many", wantMsg: "Capacity must be an integer"},
		{name: "empty", value: "", wantMsg: "Capacity must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.RequireIntegerInRange(tt.value, "Capacity", tt.min, tt.max)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireNumberInRange(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		min     *float64
		max     *float64
		want    float64
		wantMsg string
	}{
		{name: "fraction", value: "15.5", want: 15.5},
		{name: "integer text", value: "20", want: 20},
		{name: "zero at min", value: "0", min: validation.Bound(0.0), want: 0},
		{name: "below min", value: "-0.01", min: validation.Bound(0.0), wantMsg: "Price per hour must be at least 0"},
		{name: "above fractional max", value: "99.9", max: validation.Bound(99.5), wantMsg: "Price per hour must be at most 99.5"},
		{name: "text", value: "cheap", wantMsg: "Price per hour must be a number"},
		{name: "nan", value: "NaN", wantMsg: "Price per hour must be a number"},
		{name: "infinity", value: "+Inf", wantMsg: "Price per hour must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.RequireNumberInRange(tt.value, "Price per hour", tt.min, tt.max)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireMember(t *testing.T) {
	allowed := []string{"Available", "Under Maintenance", "Booked"}

	assert.NoError(t, validation.RequireMember("Under Maintenance", "Status", allowed))

	err := validation.RequireMember("available", "Status", allowed)
	require.Error(t, err)
	assert.Equal(t, "Status must be one of: Available, Under Maintenance, Booked", err.Error())

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Status", verr.Field)
}

func TestChecksAreDeterministic(t *testing.T) {
	first, err1 := validation.RequireIntegerInRange("0", "Capacity", validation.Bound(1), nil)
	second, err2 := validation.RequireIntegerInRange("0", "Capacity", validation.Bound(1), nil)

	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)
}

func TestErrors(t *testing.T) {
	errs := validation.Errors{"Name is required", "Location is required"}
	assert.Equal(t, "Name is required; Location is required", errs.Error())
}
