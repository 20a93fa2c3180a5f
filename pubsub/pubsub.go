package pubsub

import (
	"context"

	"blog-viewstats/cache"
	"blog-viewstats/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

type HandlerFunc func(evt models.ViewEvent)

// PubSub carries recorded views over a redis channel.
type PubSub struct {
	redisStore *cache.RedisStore
	channel    string
}

func NewPubSub(redisStore *cache.RedisStore, channel string) *PubSub {
	return &PubSub{redisStore: redisStore, channel: channel}
}

// Publish sends evt to every subscriber of the channel.
func (ps *PubSub) Publish(ctx context.Context, evt models.ViewEvent) error {
	bytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return ps.redisStore.Client.Publish(ctx, ps.channel, bytes).Err()
}

// Subscribe calls handler for every event until ctx is done. It blocks.
func (ps *PubSub) Subscribe(ctx context.Context, handler HandlerFunc) error {
	sub := ps.redisStore.Client.Subscribe(ctx, ps.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reading.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt models.ViewEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Warn().Err(err).Msg("decode view event")
				continue
			}
			handler(evt)
		}
	}
}
