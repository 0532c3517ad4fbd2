package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const presenceKeyPrefix = "presence:"

// PresenceService tracks which users currently hold a realtime connection,
// backed by Redis keys with a TTL so a crashed connection ages out.
type PresenceService struct {
	RDB *redis.Client
	TTL time.Duration
	Log zerolog.Logger
}

func NewPresenceService(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *PresenceService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PresenceService{
		RDB: rdb,
		TTL: ttl,
		Log: log.With().Str("service", "presence").Logger(),
	}
}

// MarkOnline records a live connection for the user. Called on socket
// connect and refreshed by heartbeats.
func (s *PresenceService) MarkOnline(ctx context.Context, userID string) error {
	return s.RDB.Set(ctx, presenceKeyPrefix+userID, "1", s.TTL).Err()
}

// MarkOffline removes the presence key on disconnect.
func (s *PresenceService) MarkOffline(ctx context.Context, userID string) error {
	return s.RDB.Del(ctx, presenceKeyPrefix+userID).Err()
}

// IsOnline reports whether the user currently has a connection.
func (s *PresenceService) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := s.RDB.Exists(ctx, presenceKeyPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
