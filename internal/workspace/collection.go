package workspace

import (
	"slices"

	"syno/internal/service"
)

// Collection addresses one typed collection of a Snapshot.
type Collection[T any] struct {
	Kind Kind
	get  func(*Snapshot) []T
	set  func(*Snapshot, []T)
	id   func(T) service.ID
}

// Items returns the collection's entries in snap.
func (c Collection[T]) Items(snap Snapshot) []T { return c.get(&snap) }

// ID returns the identifier of item.
func (c Collection[T]) ID(item T) service.ID { return c.id(item) }

var (
	Members = Collection[service.Member]{
		Kind: KindMembers,
		get:  func(s *Snapshot) []service.Member { return s.Members },
		set:  func(s *Snapshot, v []service.Member) { s.Members = v },
		id:   func(m service.Member) service.ID { return m.ID },
	}
	Tasks = Collection[service.Task]{
		Kind: KindTasks,
		get:  func(s *Snapshot) []service.Task { return s.Tasks },
		set:  func(s *Snapshot, v []service.Task) { s.Tasks = v },
		id:   func(t service.Task) service.ID { return t.ID },
	}
	Files = Collection[service.FileAsset]{
		Kind: KindFiles,
		get:  func(s *Snapshot) []service.FileAsset { return s.Files },
		set:  func(s *Snapshot, v []service.FileAsset) { s.Files = v },
		id:   func(f service.FileAsset) service.ID { return f.ID },
	}
	Messages = Collection[service.Message]{
		Kind: KindMessages,
		get:  func(s *Snapshot) []service.Message { return s.Messages },
		set:  func(s *Snapshot, v []service.Message) { s.Messages = v },
		id:   func(m service.Message) service.ID { return m.ID },
	}
)

// ReplaceCollection installs items as the full contents of c for the active
// group and marks it loaded. Duplicate ids collapse to one entry: the last
// value wins and keeps the first position.
func ReplaceCollection[T any](s *Store, c Collection[T], items []T) error {
	s.mu.RLock()
	gen, active := s.gen, s.snap.Active()
	s.mu.RUnlock()
	if !active {
		return ErrNoGroup
	}
	if !replace(s, gen, c, items) {
		return ErrGroupChanged
	}
	return nil
}

func replace[T any](s *Store, gen uint64, c Collection[T], items []T) bool {
	items = dedupe(items, c.id)
	return s.update(gen, func(snap *Snapshot) {
		c.set(snap, items)
		snap.loaded[c.Kind] = true
	})
}

func dedupe[T any](items []T, id func(T) service.ID) []T {
	out := make([]T, 0, len(items))
	pos := make(map[service.ID]int, len(items))
	for _, item := range items {
		key := id(item)
		if i, ok := pos[key]; ok {
			out[i] = item
			continue
		}
		pos[key] = len(out)
		out = append(out, item)
	}
	return out
}

// Find returns the entry of c with the given id in the active snapshot.
func Find[T any](s *Store, c Collection[T], id service.ID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := c.get(&s.snap)
	if i := slices.IndexFunc(items, func(item T) bool { return c.id(item) == id }); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

func find[T any](s *Store, gen uint64, c Collection[T], id service.ID) (T, bool) {
	s.mu.RLock()
	current := gen == s.gen
	s.mu.RUnlock()
	if !current {
		var zero T
		return zero, false
	}
	return Find(s, c, id)
}

// upsert replaces the entry with item's id or appends item.
func upsert[T any](s *Store, gen uint64, c Collection[T], item T) bool {
	return s.update(gen, func(snap *Snapshot) {
		items := slices.Clone(c.get(snap))
		key := c.id(item)
		if i := slices.IndexFunc(items, func(v T) bool { return c.id(v) == key }); i >= 0 {
			items[i] = item
		} else {
			items = append(items, item)
		}
		c.set(snap, items)
	})
}

// put replaces the entry with item's id. Missing entries are left missing.
func put[T any](s *Store, gen uint64, c Collection[T], item T) bool {
	return s.update(gen, func(snap *Snapshot) {
		key := c.id(item)
		items := c.get(snap)
		if i := slices.IndexFunc(items, func(v T) bool { return c.id(v) == key }); i >= 0 {
			items = slices.Clone(items)
			items[i] = item
			c.set(snap, items)
		}
	})
}

// drop removes the entry with the given id.
func drop[T any](s *Store, gen uint64, c Collection[T], id service.ID) bool {
	return s.update(gen, func(snap *Snapshot) {
		c.set(snap, slices.DeleteFunc(slices.Clone(c.get(snap)), func(v T) bool { return c.id(v) == id }))
	})
}
