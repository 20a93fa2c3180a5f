// Command statsdump prints the summary, or with -raw the stored document,
// of the configured backend.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"blog-viewstats/cache"
	"blog-viewstats/config"
	"blog-viewstats/store"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

func main() {
	raw := flag.Bool("raw", false, "print the raw aggregate document")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var deps store.Deps
	if cfg.Store.Backend == config.BackendRedis {
		redisStore, err := cache.DialRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		deps.Redis = redisStore
	}

	// Reading needs no write discipline.
	cfg.Store.Consistency = config.ConsistencyNone
	st, err := store.Open(ctx, cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	var out interface{}
	if *raw {
		out, err = st.State(ctx)
	} else {
		out, err = st.Summary(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read stats")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("failed to encode output")
	}
}
