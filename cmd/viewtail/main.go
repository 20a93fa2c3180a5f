// Command viewtail prints recorded views from the live feed as they happen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blog-viewstats/cache"
	"blog-viewstats/config"
	"blog-viewstats/models"
	"blog-viewstats/pubsub"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisStore, err := cache.DialRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisStore.Close()

	ps := pubsub.NewPubSub(redisStore, cfg.Events.Channel)
	err = ps.Subscribe(ctx, func(evt models.ViewEvent) {
		fmt.Printf("%s  %-8s %s  %s (%d)\n",
			evt.At.Format("2006-01-02 15:04:05"), evt.Device, evt.Country, evt.Path, evt.Views)
	})
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("subscription ended")
	}
}
