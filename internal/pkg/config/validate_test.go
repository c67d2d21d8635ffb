package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration("TIMEOUT", time.Second))
	assert.Error(t, ValidatePositiveDuration("TIMEOUT", 0))
	assert.Error(t, ValidatePositiveDuration("TIMEOUT", -time.Second))
}

func TestValidateDurationRange(t *testing.T) {
	assert.NoError(t, ValidateDurationRange("RUN_TIMEOUT", time.Hour, time.Minute, 4*time.Hour))
	assert.NoError(t, ValidateDurationRange("RUN_TIMEOUT", time.Minute, time.Minute, 4*time.Hour))
	assert.Error(t, ValidateDurationRange("RUN_TIMEOUT", time.Second, time.Minute, 4*time.Hour))
	assert.Error(t, ValidateDurationRange("RUN_TIMEOUT", 5*time.Hour, time.Minute, 4*time.Hour))
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange("PORT", 9090, 1024, 65535))
	assert.Error(t, ValidateIntRange("PORT", 80, 1024, 65535))
	assert.Error(t, ValidateIntRange("PORT", 70000, 1024, 65535))
}

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"daily", "10 9 * * *", false},
		{"every five minutes", "*/5 * * * *", false},
		{"weekday mornings", "0 8 * * 1-5", false},
		{"empty", "", true},
		{"words", "every day at nine", true},
		{"six fields", "0 10 9 * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("Asia/Shanghai"))
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus"))
}
