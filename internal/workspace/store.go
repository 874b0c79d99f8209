// Package workspace keeps the local view of one group's data in sync with
// the remote service.
//
// A Store holds the snapshot of the active group. Controllers apply
// mutations to it, and a Router tracks which slice the user is looking at.
// Only one group is active at a time; switching groups cancels everything
// still in flight for the previous one.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"syno/internal/service"
)

var (
	// ErrNoGroup is returned by operations that need an active group.
	ErrNoGroup = errors.New("no group is open")

	// ErrGroupChanged is returned when the active group changed while a
	// load was in flight. The late result has been dropped.
	ErrGroupChanged = errors.New("active group changed")
)

// Kind identifies one of the four resource collections of a group.
type Kind int

const (
	KindMembers Kind = iota
	KindTasks
	KindFiles
	KindMessages

	numKinds = 4
)

// Kinds lists every collection kind in load order.
var Kinds = []Kind{KindMembers, KindTasks, KindFiles, KindMessages}

func (k Kind) String() string {
	switch k {
	case KindMembers:
		return "members"
	case KindTasks:
		return "tasks"
	case KindFiles:
		return "files"
	case KindMessages:
		return "messages"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Snapshot is the state of one group at a point in time.
// Values returned by the Store are copies and safe to keep.
type Snapshot struct {
	Group    service.Group
	Members  []service.Member
	Tasks    []service.Task
	Files    []service.FileAsset
	Messages []service.Message

	loaded [numKinds]bool
}

// Loaded reports whether collection k has been fetched successfully.
func (s Snapshot) Loaded(k Kind) bool {
	if k < 0 || k >= numKinds {
		return false
	}
	return s.loaded[k]
}

// Active reports whether the snapshot belongs to an open group.
func (s Snapshot) Active() bool { return s.Group.ID != "" }

func (s Snapshot) clone() Snapshot {
	c := s
	c.Members = append([]service.Member(nil), s.Members...)
	c.Tasks = append([]service.Task(nil), s.Tasks...)
	c.Files = append([]service.FileAsset(nil), s.Files...)
	c.Messages = append([]service.Message(nil), s.Messages...)
	return c
}

// Warning records a secondary collection that failed to load.
type Warning struct {
	Kind Kind
	Err  error
}

func (w Warning) Error() string { return fmt.Sprintf("load %s: %v", w.Kind, w.Err) }

// Store is the single source of truth for the active group.
// Only the Store and Controllers write to it.
type Store struct {
	svc    service.Service
	logger *slog.Logger

	mu       sync.RWMutex
	gen      uint64
	groupCtx context.Context
	cancel   context.CancelFunc
	snap     Snapshot
	warnings []Warning

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore creates an empty store backed by svc.
func NewStore(svc service.Service, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		svc:    svc,
		logger: logger,
		subs:   make(map[int]func(Snapshot)),
	}
}

// groupOp is a request scoped to the group that was active when it began.
// Its context is cancelled when that group stops being active.
type groupOp struct {
	ctx     context.Context
	gen     uint64
	groupID service.ID
	release func()
}

func (s *Store) acquire(ctx context.Context) (groupOp, error) {
	s.mu.RLock()
	gen, groupCtx, groupID := s.gen, s.groupCtx, s.snap.Group.ID
	s.mu.RUnlock()
	if groupID == "" {
		return groupOp{}, ErrNoGroup
	}
	return bindOp(ctx, groupCtx, gen, groupID), nil
}

func bindOp(ctx, groupCtx context.Context, gen uint64, groupID service.ID) groupOp {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(groupCtx, cancel)
	return groupOp{
		ctx:     ctx,
		gen:     gen,
		groupID: groupID,
		release: func() {
			stop()
			cancel()
		},
	}
}

// switchTo makes groupID active, cancelling the previous group.
func (s *Store) switchTo(groupID service.ID) (uint64, context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.groupCtx, s.cancel = context.WithCancel(context.Background())
	s.snap = Snapshot{Group: service.Group{ID: groupID}}
	s.warnings = nil
	gen, groupCtx := s.gen, s.groupCtx
	s.mu.Unlock()
	return gen, groupCtx
}

// update runs fn on the live snapshot if gen is still the active
// generation, then notifies subscribers. It reports whether fn ran.
func (s *Store) update(gen uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	if gen != s.gen || !s.snap.Active() {
		s.mu.Unlock()
		return false
	}
	fn(&s.snap)
	snap := s.snap.clone()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// LoadGroup makes groupID the active group and fetches its summary and all
// four collections concurrently. A summary failure fails the load and leaves
// no group active. A failed collection is left empty and reported through
// Warnings.
func (s *Store) LoadGroup(ctx context.Context, groupID service.ID) (Snapshot, error) {
	if groupID == "" {
		return Snapshot{}, &service.ValidationError{Field: "group", Message: "group id is required"}
	}
	gen, groupCtx := s.switchTo(groupID)
	op := bindOp(ctx, groupCtx, gen, groupID)
	defer op.release()

	s.logger.Debug("loading group", "group", groupID)

	g, gctx := errgroup.WithContext(op.ctx)
	g.Go(func() error {
		group, err := s.svc.GetGroup(gctx, groupID)
		if err != nil {
			return err
		}
		group.ID = groupID
		s.update(gen, func(snap *Snapshot) { snap.Group = group })
		return nil
	})
	for _, kind := range Kinds {
		g.Go(func() error {
			err := s.fetch(gctx, gen, groupID, kind)
			if err == nil || gctx.Err() != nil {
				return nil
			}
			s.logger.Warn("collection load failed", "group", groupID, "kind", kind.String(), "error", err)
			s.mu.Lock()
			if gen == s.gen {
				s.warnings = append(s.warnings, Warning{Kind: kind, Err: err})
			}
			s.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	s.mu.RLock()
	current := gen == s.gen
	s.mu.RUnlock()
	if !current {
		return Snapshot{}, ErrGroupChanged
	}
	if err != nil {
		s.leave(gen)
		return Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// fetch loads one collection and installs it if gen is still active.
func (s *Store) fetch(ctx context.Context, gen uint64, groupID service.ID, kind Kind) error {
	switch kind {
	case KindMembers:
		items, err := s.svc.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		replace(s, gen, Members, items)
	case KindTasks:
		items, err := s.svc.ListTasks(ctx, groupID)
		if err != nil {
			return err
		}
		replace(s, gen, Tasks, items)
	case KindFiles:
		items, err := s.svc.ListFiles(ctx, groupID)
		if err != nil {
			return err
		}
		replace(s, gen, Files, items)
	case KindMessages:
		items, err := s.svc.ListMessages(ctx, groupID)
		if err != nil {
			return err
		}
		replace(s, gen, Messages, items)
	default:
		return fmt.Errorf("unknown collection %v", kind)
	}
	return nil
}

// Refresh reloads one collection of the active group.
func (s *Store) Refresh(ctx context.Context, kind Kind) error {
	op, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer op.release()
	return s.fetch(op.ctx, op.gen, op.groupID, kind)
}

// RefreshGroup reloads the summary record of the active group.
func (s *Store) RefreshGroup(ctx context.Context) error {
	op, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer op.release()
	group, err := s.svc.GetGroup(op.ctx, op.groupID)
	if err != nil {
		return err
	}
	group.ID = op.groupID
	s.update(op.gen, func(snap *Snapshot) { snap.Group = group })
	return nil
}

// Leave closes the active group. In-flight requests for it are cancelled
// and their responses dropped.
func (s *Store) Leave() {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	s.leave(gen)
}

func (s *Store) leave(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.snap = Snapshot{}
	s.warnings = nil
	s.mu.Unlock()
	s.notify(Snapshot{})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Warnings returns the collection failures of the last load.
func (s *Store) Warnings() []Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Warning(nil), s.warnings...)
}

// Subscribe registers fn to receive a snapshot after every change.
// Calls are made outside the store lock and may come from any goroutine.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
