package store

import (
	"context"
	"path/filepath"
	"testing"

	"blog-viewstats/cache"
	"blog-viewstats/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Backends(t *testing.T) {
	_, client := newTestRedis(t)
	dir := t.TempDir()

	cases := []struct {
		backend string
		deps    Deps
	}{
		{backend: config.BackendFile},
		{backend: config.BackendRedis, deps: Deps{Redis: &cache.RedisStore{Client: client}}},
		{backend: config.BackendS3, deps: Deps{S3: newFakeS3()}},
		{backend: config.BackendSQLite},
		{backend: config.BackendBolt},
	}

	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.Backend = tc.backend
			cfg.Store.FilePath = filepath.Join(dir, "stats.json")
			cfg.SQLite.Path = filepath.Join(dir, "viewstats.db")
			cfg.Bolt.Path = filepath.Join(dir, "viewstats.bolt")
			cfg.S3.Bucket = "blog"

			s, err := Open(context.Background(), cfg, tc.deps)
			require.NoError(t, err)
			defer s.Close()

			assert.Equal(t, tc.backend, s.Backend())
			assert.Equal(t, config.ConsistencyMutex, s.Consistency())
			assert.NoError(t, s.Ping(context.Background()))
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	_, err := Open(context.Background(), cfg, Deps{})
	assert.Error(t, err)

	cfg.Store.Backend = config.BackendAuto
	_, err = Open(context.Background(), cfg, Deps{})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	cfg.Store.Backend = config.BackendFile
	cfg.Store.FilePath = filepath.Join(t.TempDir(), "stats.json")
	cfg.Store.Consistency = config.ConsistencyTransaction
	_, err = Open(context.Background(), cfg, Deps{})
	assert.ErrorIs(t, err, ErrNoTransactions)
}
