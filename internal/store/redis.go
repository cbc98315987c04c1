package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

const (
	runKeyPrefix = "morningpulse:run"
	runsChannel  = "morningpulse:runs"
)

// RedisStore keeps each aggregation run as one JSON document and
// announces writes on a pub/sub channel.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func runKey(country, date string) string {
	return fmt.Sprintf("%s:%s:%s", runKeyPrefix, strings.ToLower(country), date)
}

func (s *RedisStore) GetRun(ctx context.Context, country, date string) (*model.AggregationRun, error) {
	payload, err := s.client.Get(ctx, runKey(country, date)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("store: decode run document: %w", err)
	}

	return normalizeRunDocument(raw, country, date), nil
}

// SetRun writes the run document. A plain write replaces the whole
// document; a merge keeps existing categories that the incoming run
// does not name, while same-named categories are replaced wholesale.
func (s *RedisStore) SetRun(ctx context.Context, run *model.AggregationRun, merge bool) error {
	doc := run

	if merge {
		existing, err := s.GetRun(ctx, run.Country, run.Date)
		if err != nil && err != ErrNotFound {
			return err
		}
		doc = mergeRuns(existing, run)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode run document: %w", err)
	}

	if err := s.client.Set(ctx, runKey(doc.Country, doc.Date), payload, 0).Err(); err != nil {
		return fmt.Errorf("store: set run: %w", err)
	}

	ref, err := json.Marshal(model.RunRef{Country: doc.Country, Date: doc.Date})
	if err != nil {
		return fmt.Errorf("store: encode run ref: %w", err)
	}
	if err := s.client.Publish(ctx, runsChannel, ref).Err(); err != nil {
		return fmt.Errorf("store: publish run ref: %w", err)
	}

	return nil
}

// mergeRuns unions category keys: categories the incoming run names
// replace same-named keys wholesale, existing categories it does not
// name are kept. Metadata comes from the incoming run.
func mergeRuns(existing, incoming *model.AggregationRun) *model.AggregationRun {
	if existing == nil {
		return incoming
	}

	merged := &model.AggregationRun{
		Date:       incoming.Date,
		Country:    incoming.Country,
		Categories: make(map[string][]model.Article, len(existing.Categories)+len(incoming.Categories)),
		CreatedAt:  incoming.CreatedAt,
	}
	for name, articles := range existing.Categories {
		merged.Categories[name] = articles
	}
	for name, articles := range incoming.Categories {
		merged.Categories[name] = articles
	}
	return merged
}

// Subscribe delivers a RunRef for every persisted run until the
// returned unsubscribe function is called or ctx ends.
func (s *RedisStore) Subscribe(ctx context.Context, onChange func(model.RunRef), onError func(error)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, runsChannel)

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("store: subscribe: %w", err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var ref model.RunRef
			if err := json.Unmarshal([]byte(msg.Payload), &ref); err != nil {
				if onError != nil {
					onError(fmt.Errorf("store: decode run ref: %w", err))
				}
				continue
			}
			onChange(ref)
		}
	}()

	return func() { pubsub.Close() }, nil
}
