package selection

import (
	"errors"
	"testing"

	"github.com/gin-contrib/sessions"
)

type memorySession struct {
	values map[interface{}]interface{}
	saves  int
}

func newMemorySession() *memorySession {
	return &memorySession{values: make(map[interface{}]interface{})}
}

func (m *memorySession) ID() string { return "test" }
func (m *memorySession) Get(key interface{}) interface{} { return m.values[key] }
func (m *memorySession) Set(key interface{}, val interface{}) { m.values[key] = val }
func (m *memorySession) Delete(key interface{}) { delete(m.values, key) }
func (m *memorySession) Clear() { m.values = make(map[interface{}]interface{}) }
func (m *memorySession) AddFlash(interface{}, ...string) {}
func (m *memorySession) Flashes(...string) []interface{} { return nil }
func (m *memorySession) Options(sessions.Options) {}
func (m *memorySession) Save() error {
	m.saves++
	return nil
}

type item struct {
	ID   uint
	Name string
}

var errMissing = errors.New("missing")

func testStore() *Store[item] {
	records := map[uint]*item{1: {ID: 1, Name: "main"}, 2: {ID: 2, Name: "alt"}}
	return NewStore[item]("selected_item_id", func(id uint) (*item, error) {
		if record, ok := records[id]; ok {
			return record, nil
		}
		return nil, errMissing
	}, errMissing)
}

func TestCurrentWithoutSelection(t *testing.T) {
	state, err := testStore().Current(newMemorySession())
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if state.Record != nil || state.Loading {
		t.Fatalf("expected empty settled state, got %#v", state)
	}
}

func TestSelectAndClear(t *testing.T) {
	store := testStore()
	session := newMemorySession()

	state, err := store.Select(session, 2)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if state.Record == nil || state.Record.Name != "alt" || state.Loading {
		t.Fatalf("unexpected state %#v", state)
	}

	current, err := store.Current(session)
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if current.Record == nil || current.Record.ID != 2 {
		t.Fatalf("expected stored selection, got %#v", current)
	}

	cleared, err := store.Clear(session)
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if cleared.Record != nil || store.SelectedID(session) != 0 {
		t.Fatalf("expected selection to be cleared, got %#v", cleared)
	}
}

func TestSelectUnknownKeepsPrevious(t *testing.T) {
	store := testStore()
	session := newMemorySession()

	if _, err := store.Select(session, 1); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if _, err := store.Select(session, 9); !errors.Is(err, errMissing) {
		t.Fatalf("expected errMissing, got %v", err)
	}
	if store.SelectedID(session) != 1 {
		t.Fatalf("expected previous selection to remain, got %d", store.SelectedID(session))
	}
}

func TestStaleSelectionIsDropped(t *testing.T) {
	store := testStore()
	session := newMemorySession()
	session.Set("selected_item_id", uint(7))

	state, err := store.Current(session)
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if state.Record != nil || store.SelectedID(session) != 0 {
		t.Fatalf("expected stale selection to be cleared, got %#v", state)
	}
}

func TestPending(t *testing.T) {
	previous := &item{ID: 1}
	state := Pending(previous)
	if !state.Loading || state.Record != previous {
		t.Fatalf("unexpected pending state %#v", state)
	}
}
