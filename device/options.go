package device

import "github.com/franklyfw/franklyfw/progress"

// Config holds Device configuration assembled from the defaults and any
// Options passed to New.
type Config struct {
	// Logger receives Device diagnostic messages. Defaults to a no-op.
	Logger Logger

	// Progress receives operation progress updates. Defaults to
	// progress.Discard.
	Progress progress.Sink

	// EraseBeforeFlash, when true, has Flash erase every application
	// page it writes once the page's buffered CRC is verified, just
	// before committing the buffer to flash.
	EraseBeforeFlash bool
}

func defaultConfig() Config {
	return Config{
		Logger:           nopLogger{},
		Progress:         progress.Discard,
		EraseBeforeFlash: true,
	}
}

// Option is a functional option for configuring a Device.
type Option func(*Config)

// WithLogger sets the Device's logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithProgress sets the Device's progress sink.
func WithProgress(sink progress.Sink) Option {
	return func(c *Config) {
		if sink != nil {
			c.Progress = sink
		}
	}
}

// WithEraseBeforeFlash controls whether Flash erases each application
// page after its buffered contents pass the CRC check and before they
// are committed. Default true.
func WithEraseBeforeFlash(erase bool) Option {
	return func(c *Config) {
		c.EraseBeforeFlash = erase
	}
}
