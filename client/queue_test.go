package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := NewQueue(&MemoryQueueStore{})
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	return q
}

func TestQueueFIFO(t *testing.T) {
	q := newTestQueue(t)

	for _, typ := range []string{"first", "second", "third"} {
		if err := q.Enqueue(PendingAction{Type: typ, Method: "POST", Endpoint: "/x"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("len = %d, want 3", q.Len())
	}

	for _, want := range []string{"first", "second", "third"} {
		head, ok := q.Peek()
		if !ok {
			t.Fatalf("queue empty before %q", want)
		}
		if head.Type != want {
			t.Fatalf("head = %q, want %q", head.Type, want)
		}
		if err := q.Pop(); err != nil {
			t.Fatalf("pop: %v", err)
		}
	}
	if _, ok := q.Peek(); ok {
		t.Fatal("queue not empty after draining")
	}
}

func TestQueueDropRecordsReason(t *testing.T) {
	q := newTestQueue(t)
	q.Enqueue(PendingAction{Type: "doomed", Method: "DELETE", Endpoint: "/y"})
	q.Enqueue(PendingAction{Type: "survivor", Method: "POST", Endpoint: "/z"})

	if err := q.Drop("budget not found"); err != nil {
		t.Fatalf("drop: %v", err)
	}

	dropped := q.Dropped()
	if len(dropped) != 1 {
		t.Fatalf("dropped count = %d, want 1", len(dropped))
	}
	if dropped[0].Action.Type != "doomed" || dropped[0].Reason != "budget not found" {
		t.Fatalf("dropped entry = %+v", dropped[0])
	}

	head, _ := q.Peek()
	if head.Type != "survivor" {
		t.Fatalf("head after drop = %q", head.Type)
	}
}

func TestQueuePopEmptyIsNoop(t *testing.T) {
	q := newTestQueue(t)
	if err := q.Pop(); err != nil {
		t.Fatalf("pop on empty queue: %v", err)
	}
	if err := q.Drop("nothing"); err != nil {
		t.Fatalf("drop on empty queue: %v", err)
	}
	if len(q.Dropped()) != 0 {
		t.Fatal("drop on empty queue recorded an entry")
	}
}

func TestFileQueueStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.jsonl")
	store := NewFileQueueStore(path)

	q, err := NewQueue(store)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	q.Enqueue(PendingAction{Type: "transaction:create", Method: "POST", Endpoint: "/transactions", Body: json.RawMessage(`{"id":"t1"}`)})
	q.Enqueue(PendingAction{Type: "savings:update", Method: "PUT", Endpoint: "/savings", Body: json.RawMessage(`{"amount":5}`)})

	// A fresh queue over the same file sees the same pending actions.
	reloaded, err := NewQueue(store)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded len = %d, want 2", reloaded.Len())
	}
	head, _ := reloaded.Peek()
	if head.Type != "transaction:create" || string(head.Body) != `{"id":"t1"}` {
		t.Fatalf("reloaded head = %+v", head)
	}
}

func TestFileQueueStoreMissingFile(t *testing.T) {
	store := NewFileQueueStore(filepath.Join(t.TempDir(), "does-not-exist"))
	actions, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("loaded %d actions from a missing file", len(actions))
	}
}

func TestFileQueueStoreSkipsTornLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.jsonl")
	content := `{"type":"ok","method":"POST","endpoint":"/a"}
{"type":"also-ok","method":"PUT","endpoint":"/b"}
{"type":"torn","meth`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	actions, err := NewFileQueueStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("loaded %d actions, want 2 with the torn tail skipped", len(actions))
	}
	if actions[0].Type != "ok" || actions[1].Type != "also-ok" {
		t.Fatalf("loaded actions out of order: %+v", actions)
	}
}
