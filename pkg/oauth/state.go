package oauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/artem13815/accounts/pkg/apperr"
)

// DefaultStateTTL bounds how long a login may take at the provider.
const DefaultStateTTL = 10 * time.Minute

const msgInvalidState = "state inválido ou expirado"

// StateStore issues single-use anti-CSRF state values for the redirect flow.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	// Consume succeeds once per issued, unexpired state.
	Consume(ctx context.Context, state string) error
}

func newState() string { return uuid.NewString() }

// MemoryStateStore keeps states in process.
type MemoryStateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &MemoryStateStore{ttl: ttl, now: time.Now, states: make(map[string]time.Time)}
}

func (s *MemoryStateStore) Issue(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if !exp.After(now) {
			delete(s.states, k)
		}
	}
	state := newState()
	s.states[state] = now.Add(s.ttl)
	return state, nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return apperr.Unauthorized(msgInvalidState)
	}
	delete(s.states, state)
	if !exp.After(s.now()) {
		return apperr.Unauthorized(msgInvalidState)
	}
	return nil
}

// redisStateClient is the subset of redis.Cmdable the store needs.
type redisStateClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// RedisStateStore keeps states in Redis with a TTL and consumes them with GETDEL.
type RedisStateStore struct {
	client redisStateClient
	ttl    time.Duration
	prefix string
}

func NewRedisStateStore(client redisStateClient, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStateStore{client: client, ttl: ttl, prefix: "oauth:state:"}
}

func (s *RedisStateStore) Issue(ctx context.Context) (string, error) {
	state := newState()
	if err := s.client.Set(ctx, s.prefix+state, "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return state, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return apperr.Unauthorized(msgInvalidState)
	}
	err := s.client.GetDel(ctx, s.prefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return apperr.Unauthorized(msgInvalidState)
	}
	return err
}
