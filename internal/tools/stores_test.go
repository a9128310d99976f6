package tools

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/storyloom/storyloom/internal/schema"
)

// memStore is an in-memory EntityStore that counts every call it receives.
type memStore[T any] struct {
	mu      sync.Mutex
	rows    map[int64]T
	nextID  int64
	calls   map[string]int
	updates []schema.Fields
	failErr error
	panicOn string
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{rows: map[int64]T{}, nextID: 1, calls: map[string]int{}}
}

func (s *memStore[T]) hit(op string) error {
	s.calls[op]++
	if s.panicOn == op {
		panic("store exploded")
	}
	return s.failErr
}

func (s *memStore[T]) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *memStore[T]) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["create"] + s.calls["update"] + s.calls["delete"]
}

func (s *memStore[T]) seed(v T) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	setID(&v, id)
	s.rows[id] = v
	return id
}

func (s *memStore[T]) List(_ context.Context, _ schema.Scope) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("list"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.rows[id])
	}
	return out, nil
}

func (s *memStore[T]) Get(_ context.Context, id int64, _ schema.Scope) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("get"); err != nil {
		return nil, err
	}
	v, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *memStore[T]) Create(_ context.Context, _ schema.Scope, v T) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("create"); err != nil {
		return 0, err
	}
	id := s.nextID
	s.nextID++
	setID(&v, id)
	s.rows[id] = v
	return id, nil
}

func (s *memStore[T]) Update(_ context.Context, id int64, _ schema.Scope, f schema.Fields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("update"); err != nil {
		return false, err
	}
	v, ok := s.rows[id]
	if !ok {
		return false, nil
	}
	s.updates = append(s.updates, f)
	applyFields(&v, f)
	s.rows[id] = v
	return true, nil
}

func (s *memStore[T]) Delete(_ context.Context, id int64, _ schema.Scope) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("delete"); err != nil {
		return false, err
	}
	if _, ok := s.rows[id]; !ok {
		return false, nil
	}
	delete(s.rows, id)
	return true, nil
}

// setID and applyFields use reflection so one fake serves every entity kind.
// applyFields matches Fields keys against json tags.
func setID(v any, id int64) {
	reflect.ValueOf(v).Elem().FieldByName("ID").SetInt(id)
}

func applyFields(v any, f schema.Fields) {
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
		val, ok := f[tag]
		if !ok {
			continue
		}
		switch x := val.(type) {
		case string:
			rv.Field(i).SetString(x)
		case int64:
			rv.Field(i).SetInt(x)
		}
	}
}

type memMetadata struct {
	mu    sync.Mutex
	data  map[int64]map[string]string
	calls int
}

func newMemMetadata() *memMetadata {
	return &memMetadata{data: map[int64]map[string]string{}}
}

func (m *memMetadata) GetMetadata(_ context.Context, itemID int64) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := map[string]string{}
	for k, v := range m.data[itemID] {
		out[k] = v
	}
	return out, nil
}

func (m *memMetadata) SetMetadata(_ context.Context, itemID int64, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if key == "" {
		return errors.New("metadata key cannot be empty")
	}
	if m.data[itemID] == nil {
		m.data[itemID] = map[string]string{}
	}
	m.data[itemID][key] = value
	return nil
}

type fakeStores struct {
	items      *memStore[schema.BinderItem]
	metadata   *memMetadata
	characters *memStore[schema.Character]
	locations  *memStore[schema.Location]
	threads    *memStore[schema.PlotThread]
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		items:      newMemStore[schema.BinderItem](),
		metadata:   newMemMetadata(),
		characters: newMemStore[schema.Character](),
		locations:  newMemStore[schema.Location](),
		threads:    newMemStore[schema.PlotThread](),
	}
}

func (f *fakeStores) stores() Stores {
	return Stores{
		BinderItems: f.items,
		Metadata:    f.metadata,
		Characters:  f.characters,
		Locations:   f.locations,
		PlotThreads: f.threads,
	}
}

func (f *fakeStores) totalCalls() int {
	f.metadata.mu.Lock()
	meta := f.metadata.calls
	f.metadata.mu.Unlock()
	return f.items.total() + f.characters.total() + f.locations.total() + f.threads.total() + meta
}
