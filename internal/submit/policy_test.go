package submit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.Delay)
	assert.Equal(t, StrategyFixed, p.Strategy)
	assert.NoError(t, p.Validate())
}

func TestPolicyBackoff(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		failed   int
		want     time.Duration
	}{
		{"fixed first", StrategyFixed, 1, time.Second},
		{"fixed third", StrategyFixed, 3, time.Second},
		{"linear second", StrategyLinear, 2, 2 * time.Second},
		{"linear third", StrategyLinear, 3, 3 * time.Second},
		{"exponential first", StrategyExponential, 1, time.Second},
		{"exponential third", StrategyExponential, 3, 4 * time.Second},
		{"zero clamps to first", StrategyExponential, 0, time.Second},
		{"exponential capped", StrategyExponential, 34, MaxDelay},
		{"exponential huge", StrategyExponential, 1 << 30, MaxDelay},
		{"linear capped", StrategyLinear, 1 << 40, MaxDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{MaxAttempts: 5, Delay: time.Second, Strategy: tt.strategy}
			assert.Equal(t, tt.want, p.Backoff(tt.failed))
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyFixed, s)

	s, err = ParseStrategy("exponential")
	require.NoError(t, err)
	assert.Equal(t, StrategyExponential, s)

	_, err = ParseStrategy("jitter")
	assert.Error(t, err)
}

func TestPolicyValidate(t *testing.T) {
	assert.Error(t, Policy{MaxAttempts: 0}.Validate())
	assert.Error(t, Policy{MaxAttempts: 1, Delay: -time.Second}.Validate())
	assert.Error(t, Policy{MaxAttempts: 1, Strategy: "random"}.Validate())
	assert.NoError(t, Policy{MaxAttempts: 1}.Validate())
	assert.Error(t, Policy{MaxAttempts: MaxAttemptsLimit + 1, Delay: time.Second}.Validate())
	assert.Error(t, Policy{MaxAttempts: 3, Delay: time.Hour}.Validate())
	assert.NoError(t, Policy{MaxAttempts: MaxAttemptsLimit, Delay: MaxDelay, Strategy: StrategyExponential}.Validate())
}

func TestPolicyBackoffNeverNegative(t *testing.T) {
	for _, strategy := range []Strategy{StrategyFixed, StrategyLinear, StrategyExponential} {
		p := Policy{MaxAttempts: MaxAttemptsLimit, Delay: 2 * time.Second, Strategy: strategy}
		for failed := 1; failed <= MaxAttemptsLimit; failed++ {
			d := p.Backoff(failed)
			require.GreaterOrEqual(t, d, time.Duration(0), "%s attempt %d", strategy, failed)
			require.LessOrEqual(t, d, MaxDelay, "%s attempt %d", strategy, failed)
		}
	}
}
