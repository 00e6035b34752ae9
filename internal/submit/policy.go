package submit

import (
	"fmt"
	"time"
)

// Strategy selects how the wait between attempts grows.
type Strategy string

const (
	StrategyFixed       Strategy = "fixed"
	StrategyLinear      Strategy = "linear"
	StrategyExponential Strategy = "exponential"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 2 * time.Second

	// MaxAttemptsLimit and MaxDelay bound a policy. Backoff never waits
	// longer than MaxDelay.
	MaxAttemptsLimit = 100
	MaxDelay         = 5 * time.Minute
)

// Policy bounds the submission loop. MaxAttempts is the total number of
// send attempts, the first one included: MaxAttempts=3 means one send and
// at most two retries.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Strategy    Strategy
}

// DefaultPolicy returns 3 attempts total with a fixed 2s wait.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Strategy:    StrategyFixed,
	}
}

// ParseStrategy converts a config value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyFixed:
		return StrategyFixed, nil
	case StrategyLinear:
		return StrategyLinear, nil
	case StrategyExponential:
		return StrategyExponential, nil
	default:
		return "", fmt.Errorf("unknown backoff strategy %q: use fixed, linear or exponential", s)
	}
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.MaxAttempts > MaxAttemptsLimit {
		return fmt.Errorf("max attempts must be at most %d, got %d", MaxAttemptsLimit, p.MaxAttempts)
	}
	if p.Delay < 0 || p.Delay > MaxDelay {
		return fmt.Errorf("retry delay must be between 0 and %s, got %s", MaxDelay, p.Delay)
	}
	if _, err := ParseStrategy(string(p.Strategy)); err != nil {
		return err
	}
	return nil
}

// Backoff returns the wait after the given failed attempt (1-based),
// capped at MaxDelay.
func (p Policy) Backoff(failed int) time.Duration {
	if failed < 1 {
		failed = 1
	}
	d := p.Delay
	switch p.Strategy {
	case StrategyLinear:
		if d > 0 && time.Duration(failed) > MaxDelay/d {
			return MaxDelay
		}
		d *= time.Duration(failed)
	case StrategyExponential:
		for i := 1; i < failed && d > 0 && d < MaxDelay; i++ {
			d <<= 1
		}
	}
	return min(d, MaxDelay)
}
