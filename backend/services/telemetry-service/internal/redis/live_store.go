package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smartmeter/backend/services/telemetry-service/internal/models"
)

// LiveStore caches the latest sample per device. Entries expire after ttl, so
// a device with no key is simply one that has been quiet.
type LiveStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLiveStore returns redis-backed store.
func NewLiveStore(client *redis.Client, ttl time.Duration) *LiveStore {
	return &LiveStore{client: client, ttl: ttl}
}

func (s *LiveStore) key(deviceID string) string {
	return fmt.Sprintf("telemetry:live:%s", deviceID)
}

// Save caches the sample, replacing any previous one.
func (s *LiveStore) Save(ctx context.Context, reading models.Reading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(reading.DeviceID), data, s.ttl).Err()
}

// Get returns the cached sample or redis.Nil when expired or never seen.
func (s *LiveStore) Get(ctx context.Context, deviceID string) (*models.Reading, error) {
	result, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if err != nil {
		return nil, err
	}
	var reading models.Reading
	if err := json.Unmarshal([]byte(result), &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}
