// Package session holds per-session conversational state and message
// history in memory. The store is sharded with per-session locking so
// concurrent requests for different sessions never contend and concurrent
// requests for the same session serialize safely.
package session

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/voxbridge/voxbridge/pkg/core"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Reserved state keys.
const (
	StateLanguage     = "language"
	StatePersona      = "persona"
	StateCurrentTopic = "current_topic"
	StateLastResponse = "last_response"
)

// Defaults applied at creation.
const (
	DefaultLanguage = "en"
	DefaultPersona  = "default"
)

// Message is one conversation turn. Immutable once appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of a session, safe to use without
// holding any store lock.
type Snapshot struct {
	ID        string            `json:"session_id"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []Message         `json:"messages"`
	State     map[string]string `json:"state"`
}

// ErrNotFound is returned for operations on unknown sessions.
var ErrNotFound = core.NewNotFoundError("session not found")

type entry struct {
	mu        sync.Mutex
	createdAt time.Time
	messages  []Message
	state     map[string]string
}

const shardCount = 16

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// Store is the process-lifetime session store. Sessions live until
// explicitly deleted; there is no TTL or eviction.
type Store struct {
	shards [shardCount]shard
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].sessions = make(map[string]*entry)
	}
	return s
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.shards[h.Sum32()%shardCount]
}

func newEntry() *entry {
	return &entry{
		createdAt: time.Now().UTC(),
		state: map[string]string{
			StateLanguage: DefaultLanguage,
			StatePersona:  DefaultPersona,
		},
	}
}

// Create creates (or resets) the session with default state.
func (s *Store) Create(id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	sh.sessions[id] = newEntry()
	sh.mu.Unlock()
}

// Ensure creates the session if it does not exist yet. It reports whether
// the session was created by this call.
func (s *Store) Ensure(id string) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.sessions[id]; ok {
		return false
	}
	sh.sessions[id] = newEntry()
	return true
}

// Delete removes the session. Deleting an unknown session is a no-op.
func (s *Store) Delete(id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	delete(sh.sessions, id)
	sh.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		n += len(s.shards[i].sessions)
		s.shards[i].mu.RUnlock()
	}
	return n
}

func (s *Store) lookup(id string) (*entry, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	e, ok := sh.sessions[id]
	sh.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (*Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return &Snapshot{
		ID:        id,
		CreatedAt: e.createdAt,
		Messages:  append([]Message(nil), e.messages...),
		State:     cloneState(e.state),
	}, nil
}

// Messages returns the session's message history in insertion order.
func (s *Store) Messages(id string) ([]Message, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Message(nil), e.messages...), nil
}

// AppendMessage appends one message to the session history.
func (s *Store) AppendMessage(id string, role Role, content string) error {
	if !role.Valid() {
		return core.NewInvalidRequestError("role must be user, assistant or system")
	}
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.messages = append(e.messages, Message{Role: role, Content: content, Timestamp: time.Now().UTC()})
	e.mu.Unlock()
	return nil
}

// SetState sets one state key.
func (s *Store) SetState(id, key, value string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.state[key] = value
	e.mu.Unlock()
	return nil
}

// State returns a copy of the session's state map.
func (s *Store) State(id string) (map[string]string, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state), nil
}

func cloneState(state map[string]string) map[string]string {
	out := make(map[string]string, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}
