package dbrx

import "time"

// execConfig holds configuration for a single command execution.
type execConfig struct {
	timeout  time.Duration
	onStatus func(CommandStatus)
}

// defaultExecConfig returns the default execution configuration.
func defaultExecConfig() *execConfig {
	return &execConfig{}
}

// ExecOption configures command execution.
type ExecOption func(*execConfig)

// WithCommandTimeout bounds the whole submit/poll cycle for one command.
// Zero means the client-wide exec timeout (see WithExecTimeout).
func WithCommandTimeout(d time.Duration) ExecOption {
	return func(c *execConfig) {
		c.timeout = d
	}
}

// OnStatus sets a callback invoked whenever the polled command status
// changes, including the terminal status.
func OnStatus(handler func(CommandStatus)) ExecOption {
	return func(c *execConfig) {
		c.onStatus = handler
	}
}
