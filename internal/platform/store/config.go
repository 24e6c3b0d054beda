package store

import "time"

// Config selects and configures backends
type Config struct {
	// AppName is reported to postgres as application_name
	AppName string

	PG PGConfig
}

// PGConfig configures the postgres pool
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop, 0 means 20
	ConnectRetries int
	// PingTimeout bounds a single boot ping, 0 means 3s
	PingTimeout time.Duration
	// TxAttempts bounds runs of a retryable transaction, 0 means 3
	TxAttempts int
}

func (c PGConfig) retries() int {
	if c.ConnectRetries <= 0 {
		return 20
	}
	return c.ConnectRetries
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 3 * time.Second
	}
	return c.PingTimeout
}

func (c PGConfig) txAttempts() int {
	if c.TxAttempts <= 0 {
		return 3
	}
	return c.TxAttempts
}
