package reaper

import "time"

const (
	defaultShortPollInterval = 10 * time.Millisecond
	defaultIdlePollInterval  = 100 * time.Millisecond
	defaultGracePeriod       = 10 * time.Second
	defaultForcedExitTimeout = 3 * time.Second
)

// Options tunes the polling cadence and the termination escalation.
type Options struct {
	// ShortPollInterval applies while at least one process is tracked.
	ShortPollInterval time.Duration `mapstructure:"short_poll_interval"`
	// IdlePollInterval applies while nothing is tracked.
	IdlePollInterval time.Duration `mapstructure:"idle_poll_interval"`
	// GracePeriod bounds the wait after a graceful termination request.
	GracePeriod time.Duration `mapstructure:"grace_period"`
	// ForcedExitTimeout bounds the wait for a descendant after it was killed.
	ForcedExitTimeout time.Duration `mapstructure:"forced_exit_timeout"`
}

// DefaultOptions returns the production cadence.
func DefaultOptions() Options {
	return Options{
		ShortPollInterval: defaultShortPollInterval,
		IdlePollInterval:  defaultIdlePollInterval,
		GracePeriod:       defaultGracePeriod,
		ForcedExitTimeout: defaultForcedExitTimeout,
	}
}

func (options Options) withDefaults() Options {
	defaults := DefaultOptions()
	if options.ShortPollInterval <= 0 {
		options.ShortPollInterval = defaults.ShortPollInterval
	}
	if options.IdlePollInterval <= 0 {
		options.IdlePollInterval = defaults.IdlePollInterval
	}
	if options.GracePeriod <= 0 {
		options.GracePeriod = defaults.GracePeriod
	}
	if options.ForcedExitTimeout <= 0 {
		options.ForcedExitTimeout = defaults.ForcedExitTimeout
	}
	return options
}
