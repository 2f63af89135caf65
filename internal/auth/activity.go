package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityStore keeps the last-seen time of each user and a revocation marker
// written when a session is ended.
type ActivityStore interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	LastSeen(ctx context.Context, userID string) (time.Time, bool, error)
	// Evict forgets the user's activity and revokes tokens issued before at.
	Evict(ctx context.Context, userID string, at time.Time) error
	RevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

const (
	activityKeyPrefix = "session:activity:"
	revokedKeyPrefix  = "session:revoked:"
)

// RedisActivityStore keeps activity in redis. Keys expire after retention.
type RedisActivityStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisActivityStore(client *redis.Client, retention time.Duration) *RedisActivityStore {
	return &RedisActivityStore{client: client, retention: retention}
}

func (s *RedisActivityStore) Touch(ctx context.Context, userID string, at time.Time) error {
	return s.client.Set(ctx, activityKeyPrefix+userID, at.UnixNano(), s.retention).Err()
}

func (s *RedisActivityStore) LastSeen(ctx context.Context, userID string) (time.Time, bool, error) {
	return s.readTime(ctx, activityKeyPrefix+userID)
}

func (s *RedisActivityStore) Evict(ctx context.Context, userID string, at time.Time) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, activityKeyPrefix+userID)
	pipe.Set(ctx, revokedKeyPrefix+userID, at.UnixNano(), s.retention)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisActivityStore) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	return s.readTime(ctx, revokedKeyPrefix+userID)
}

func (s *RedisActivityStore) readTime(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

// MemoryActivityStore is the single-instance ActivityStore used when redis is not configured.
// Entries expire after retention like their redis counterparts and are swept on write.
type MemoryActivityStore struct {
	mu        sync.RWMutex
	retention time.Duration
	clock     func() time.Time
	nextSweep time.Time
	lastSeen  map[string]memoryEntry
	revoked   map[string]memoryEntry
}

type memoryEntry struct {
	at      time.Time
	expires time.Time
}

func (e memoryEntry) live(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// NewMemoryActivityStore creates a store whose entries live for retention. A zero
// retention keeps them forever.
func NewMemoryActivityStore(retention time.Duration) *MemoryActivityStore {
	return &MemoryActivityStore{
		retention: retention,
		clock:     time.Now,
		lastSeen:  make(map[string]memoryEntry),
		revoked:   make(map[string]memoryEntry),
	}
}

// WithClock replaces the time source used for expiry.
func (s *MemoryActivityStore) WithClock(clock func() time.Time) *MemoryActivityStore {
	s.clock = clock
	return s
}

func (s *MemoryActivityStore) Touch(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen[userID] = s.entry(at)
	return nil
}

func (s *MemoryActivityStore) LastSeen(_ context.Context, userID string) (time.Time, bool, error) {
	return s.read(s.lastSeen, userID)
}

func (s *MemoryActivityStore) Evict(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastSeen, userID)
	s.revoked[userID] = s.entry(at)
	return nil
}

func (s *MemoryActivityStore) RevokedAt(_ context.Context, userID string) (time.Time, bool, error) {
	return s.read(s.revoked, userID)
}

func (s *MemoryActivityStore) read(entries map[string]memoryEntry, userID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := entries[userID]
	if !ok || !e.live(s.clock()) {
		return time.Time{}, false, nil
	}
	return e.at, true, nil
}

// entry builds a new entry and sweeps expired ones at most once per retention. Callers hold mu.
func (s *MemoryActivityStore) entry(at time.Time) memoryEntry {
	if s.retention <= 0 {
		return memoryEntry{at: at}
	}

	now := s.clock()
	if !now.Before(s.nextSweep) {
		for userID, e := range s.lastSeen {
			if !e.live(now) {
				delete(s.lastSeen, userID)
			}
		}
		for userID, e := range s.revoked {
			if !e.live(now) {
				delete(s.revoked, userID)
			}
		}
		s.nextSweep = now.Add(s.retention)
	}
	return memoryEntry{at: at, expires: now.Add(s.retention)}
}
