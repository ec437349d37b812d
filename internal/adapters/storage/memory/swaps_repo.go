package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"slot-swapper/internal/domain/swaps"
)

type swapRepo struct {
	s  *Store
	st *staged
}

func (r *swapRepo) rlock() func() {
	if r.st != nil {
		return noop
	}
	r.s.mu.RLock()
	return r.s.mu.RUnlock
}

func (r *swapRepo) wlock() func() {
	if r.st != nil {
		return noop
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *swapRepo) get(id string) (swaps.SwapRequest, bool) {
	if r.st != nil {
		if req, ok := r.st.requests[id]; ok {
			return req, true
		}
	}
	req, ok := r.s.requests[id]
	return req, ok
}

func (r *swapRepo) put(req swaps.SwapRequest) {
	if r.st != nil {
		r.st.requests[req.ID] = req
		return
	}
	r.s.requests[req.ID] = req
}

func (r *swapRepo) Create(ctx context.Context, req swaps.SwapRequest) error {
	unlock := r.wlock()
	defer unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("swap request id required")
	}
	if _, exists := r.get(req.ID); exists {
		return errors.New("swap request already exists")
	}
	r.put(req)
	return nil
}

func (r *swapRepo) GetByID(ctx context.Context, id string) (swaps.SwapRequest, error) {
	unlock := r.rlock()
	defer unlock()

	req, ok := r.get(id)
	if !ok {
		return swaps.SwapRequest{}, swaps.ErrNotFound
	}
	return req, nil
}

func (r *swapRepo) Update(ctx context.Context, req swaps.SwapRequest) error {
	unlock := r.wlock()
	defer unlock()

	if _, exists := r.get(req.ID); !exists {
		return swaps.ErrNotFound
	}
	r.put(req)
	return nil
}

func (r *swapRepo) List(ctx context.Context) ([]swaps.SwapRequest, error) {
	unlock := r.rlock()
	defer unlock()

	out := make([]swaps.SwapRequest, 0, len(r.s.requests))
	for id, req := range r.s.requests {
		if r.st != nil {
			if _, overridden := r.st.requests[id]; overridden {
				continue
			}
		}
		out = append(out, req)
	}
	if r.st != nil {
		for _, req := range r.st.requests {
			out = append(out, req)
		}
	}

	// created_at asc
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
