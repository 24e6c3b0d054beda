package store

import (
	"hostdesk/internal/platform/logger"
)

// Option configures a Store during Open
type Option func(*Store) error

// WithLogger sets the logger backends log through
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
