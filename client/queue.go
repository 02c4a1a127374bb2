package client

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// PendingAction is one mutation deferred by connectivity loss. The queue
// is strictly FIFO: later actions may reference ids created by earlier
// ones, so replay order is causal order.
type PendingAction struct {
	Type       string          `json:"type"`
	Endpoint   string          `json:"endpoint"`
	Method     string          `json:"method"`
	Body       json.RawMessage `json:"body,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// DroppedAction records a replay entry the server definitively rejected,
// kept so the UI can tell the user what was lost.
type DroppedAction struct {
	Action PendingAction
	Reason string
}

// QueueStore persists the pending list across restarts.
type QueueStore interface {
	Load() ([]PendingAction, error)
	Save(actions []PendingAction) error
}

// Queue is the client-side offline write queue.
type Queue struct {
	mu      sync.Mutex
	store   QueueStore
	pending []PendingAction
	dropped []DroppedAction
}

func NewQueue(store QueueStore) (*Queue, error) {
	pending, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Queue{store: store, pending: pending}, nil
}

func (q *Queue) Enqueue(action PendingAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	action.EnqueuedAt = time.Now()
	q.pending = append(q.pending, action)
	return q.store.Save(q.pending)
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (PendingAction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return PendingAction{}, false
	}
	return q.pending[0], true
}

// Pop removes the head after a successful replay.
func (q *Queue) Pop() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	q.pending = q.pending[1:]
	return q.store.Save(q.pending)
}

// Drop removes the head as permanently failed and records why.
func (q *Queue) Drop(reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	q.dropped = append(q.dropped, DroppedAction{Action: q.pending[0], Reason: reason})
	q.pending = q.pending[1:]
	return q.store.Save(q.pending)
}

// Len is the pending count the UI shows next to the syncing indicator.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Dropped returns entries lost during replay, for user visibility.
func (q *Queue) Dropped() []DroppedAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]DroppedAction, len(q.dropped))
	copy(out, q.dropped)
	return out
}

// FileQueueStore keeps the queue as one JSON object per line, appended in
// insertion order. Small enough that rewriting the whole file on every
// change is fine.
type FileQueueStore struct {
	Path string
}

func NewFileQueueStore(path string) *FileQueueStore {
	return &FileQueueStore{Path: path}
}

func (s *FileQueueStore) Load() ([]PendingAction, error) {
	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var actions []PendingAction
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var action PendingAction
		if err := json.Unmarshal(line, &action); err != nil {
			// A torn write at the tail must not wedge the whole queue.
			continue
		}
		actions = append(actions, action)
	}
	return actions, scanner.Err()
}

func (s *FileQueueStore) Save(actions []PendingAction) error {
	tmp := s.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, action := range actions {
		if err := enc.Encode(action); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// MemoryQueueStore is for tests and ephemeral sessions.
type MemoryQueueStore struct {
	actions []PendingAction
}

func (s *MemoryQueueStore) Load() ([]PendingAction, error) {
	out := make([]PendingAction, len(s.actions))
	copy(out, s.actions)
	return out, nil
}

func (s *MemoryQueueStore) Save(actions []PendingAction) error {
	s.actions = make([]PendingAction, len(actions))
	copy(s.actions, actions)
	return nil
}
