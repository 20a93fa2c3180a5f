package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTransactionUnsupported = errors.New("consistency \"transaction\" needs a redis, sqlite or bolt backend")
	ErrMissingRedisAddr       = errors.New("redis.addr is required")
	ErrMissingS3Bucket        = errors.New("s3.bucket is required for the s3 backend")
	ErrMissingPath            = errors.New("a storage path is required")
	ErrUnresolvedBackend      = errors.New("store backend must be resolved before validation")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the cross-field rules between the
// backend and the components that depend on it.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if c.UsesRedis() && c.Redis.Addr == "" {
		return ErrMissingRedisAddr
	}

	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendAuto:
		return ErrUnresolvedBackend
	case BackendFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("store.file_path: %w", ErrMissingPath)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return ErrMissingS3Bucket
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path: %w", ErrMissingPath)
		}
	case BackendBolt:
		if c.Bolt.Path == "" {
			return fmt.Errorf("bolt.path: %w", ErrMissingPath)
		}
	}

	if c.Store.Consistency == ConsistencyTransaction {
		switch c.Store.Backend {
		case BackendRedis, BackendSQLite, BackendBolt:
		default:
			return fmt.Errorf("%w (backend %q)", ErrTransactionUnsupported, c.Store.Backend)
		}
	}

	return nil
}
