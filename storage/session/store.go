package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type Store interface {
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mutex    sync.RWMutex
	sessions map[string]*Session
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (st *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Copy(), nil
}

func (st *MemoryStore) Save(_ context.Context, s *Session) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	cp := s.Copy()
	cp.markSaved()
	st.sessions[s.ID] = cp
	s.markSaved()
	return nil
}

func (st *MemoryStore) Delete(_ context.Context, id string) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	delete(st.sessions, id)
	return nil
}

// RedisStore keeps JSON encoded sessions in redis, shared between app instances.
// Sessions never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

func (st *RedisStore) key(id string) string { return st.prefix + id }

func (st *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, st.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "getting session")
	}
	s := new(Session)
	if err = json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "decoding session")
	}
	return s, nil
}

func (st *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err = st.client.Set(ctx, st.key(s.ID), data, 0).Err(); err != nil {
		return errors.Wrap(err, "saving session")
	}
	s.markSaved()
	return nil
}

func (st *RedisStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(st.client.Del(ctx, st.key(id)).Err(), "deleting session")
}
