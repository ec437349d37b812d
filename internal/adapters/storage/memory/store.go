package memory

import (
	"context"
	"sync"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"
)

// Store guarda todo en memoria detrás de un único lock.
// RunInTx toma el lock de escritura durante todo fn y trabaja sobre un overlay
// que solo se aplica si fn no devuelve error.
// Dentro de fn hay que usar los repos de tx: Events()/Requests() del Store
// toman el lock y bloquearían.
type Store struct {
	mu sync.RWMutex

	events   map[string]events.Event
	requests map[string]swaps.SwapRequest
	users    map[string]users.User
}

func NewStore() *Store {
	return &Store{
		events:   make(map[string]events.Event),
		requests: make(map[string]swaps.SwapRequest),
		users:    make(map[string]users.User),
	}
}

func (s *Store) Events() events.Repository  { return &eventRepo{s: s} }
func (s *Store) Requests() swaps.Repository { return &swapRepo{s: s} }
func (s *Store) Users() users.Repository    { return &userRepo{s: s} }

func (s *Store) Close() error { return nil }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx swaps.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &staged{
		events:   map[string]*events.Event{},
		requests: map[string]swaps.SwapRequest{},
	}
	if err := fn(ctx, txView{s: s, st: st}); err != nil {
		return err
	}
	st.commit(s)
	return nil
}

func (s *Store) RunInEventTx(ctx context.Context, fn func(ctx context.Context, repo events.Repository) error) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx swaps.Tx) error {
		return fn(ctx, tx.Events())
	})
}

type txView struct {
	s  *Store
	st *staged
}

func (t txView) Events() events.Repository  { return &eventRepo{s: t.s, st: t.st} }
func (t txView) Requests() swaps.Repository { return &swapRepo{s: t.s, st: t.st} }

// staged: escrituras pendientes de una tx. Un evento nil marca un borrado.
type staged struct {
	events   map[string]*events.Event
	requests map[string]swaps.SwapRequest
}

func (st *staged) commit(s *Store) {
	for id, e := range st.events {
		if e == nil {
			delete(s.events, id)
			continue
		}
		s.events[id] = *e
	}
	for id, r := range st.requests {
		s.requests[id] = r
	}
}

func noop() {}
