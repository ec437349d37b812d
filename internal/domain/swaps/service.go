package swaps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidSlot  = errors.New("invalid slot")
	ErrNotFound     = errors.New("swap request not found")
	ErrBadState     = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// NameResolver resuelve el nombre visible de un usuario (resolveUserName).
type NameResolver interface {
	ResolveName(ctx context.Context, userID string) string
}

// Service es el motor de negociación: no guarda estado propio, orquesta
// Event Store y Swap Request Store dentro de una transacción.
type Service struct {
	store Store
	names NameResolver
	log   logger.Logger
	now   func() time.Time
}

func NewService(store Store, names NameResolver, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store: store,
		names: names,
		log:   log.With(logger.Fields{"component": "swaps"}),
		now:   time.Now,
	}
}

// RequestSwap crea una solicitud PENDING y pasa ambos slots a SWAP_PENDING.
func (s *Service) RequestSwap(ctx context.Context, requesterID, offeredEventID, requestedEventID string) (SwapRequest, error) {
	requesterID = strings.TrimSpace(requesterID)
	offeredEventID = strings.TrimSpace(offeredEventID)
	requestedEventID = strings.TrimSpace(requestedEventID)

	if requesterID == "" || offeredEventID == "" || requestedEventID == "" {
		return SwapRequest{}, invalidSlot("requester and both slots are required")
	}
	if offeredEventID == requestedEventID {
		return SwapRequest{}, invalidSlot("cannot swap a slot with itself")
	}

	var out SwapRequest
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		offered, requested, err := loadPair(ctx, tx.Events(), offeredEventID, requestedEventID)
		if err != nil {
			if errors.Is(err, events.ErrNotFound) {
				return invalidSlot("slot not found")
			}
			return err
		}

		if offered.OwnerID != requesterID {
			return invalidSlot("offered slot is not yours")
		}
		if offered.Status != events.StatusSwappable {
			return invalidSlot("your slot must be swappable")
		}
		if requested.OwnerID == requesterID {
			return invalidSlot("cannot request your own slot")
		}
		if requested.Status != events.StatusSwappable {
			return invalidSlot("requested slot is not swappable")
		}

		now := s.now()
		req := SwapRequest{
			ID:               uuid.NewString(),
			RequesterID:      requesterID,
			OfferedEventID:   offered.ID,
			RequestedEventID: requested.ID,
			RequestedOwnerID: requested.OwnerID,
			Status:           StatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.Requests().Create(ctx, req); err != nil {
			return err
		}

		for _, e := range []events.Event{offered, requested} {
			e.Status = events.StatusSwapPending
			e.UpdatedAt = now
			if err := tx.Events().Update(ctx, e); err != nil {
				return err
			}
		}

		out = req
		return nil
	})
	if err != nil {
		return SwapRequest{}, err
	}

	s.log.Info("swap requested", logger.Fields{
		"request_id":   out.ID,
		"requester_id": out.RequesterID,
		"offered_id":   out.OfferedEventID,
		"requested_id": out.RequestedEventID,
	})
	return out, nil
}

// Respond resuelve una solicitud PENDING sin validar quién responde.
func (s *Service) Respond(ctx context.Context, requestID string, accept bool) (SwapRequest, error) {
	return s.respond(ctx, requestID, "", accept)
}

// RespondAs exige que responderID sea el dueño del slot pedido (al crear la solicitud).
func (s *Service) RespondAs(ctx context.Context, requestID, responderID string, accept bool) (SwapRequest, error) {
	responderID = strings.TrimSpace(responderID)
	if responderID == "" {
		return SwapRequest{}, ErrForbidden
	}
	return s.respond(ctx, requestID, responderID, accept)
}

func (s *Service) respond(ctx context.Context, requestID, responderID string, accept bool) (SwapRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return SwapRequest{}, ErrNotFound
	}

	var out SwapRequest
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		req, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if responderID != "" && req.RequestedOwnerID != responderID {
			return fmt.Errorf("%w: only the owner of the requested slot can respond", ErrForbidden)
		}
		if req.Status != StatusPending {
			return fmt.Errorf("%w: request already %s", ErrBadState, strings.ToLower(string(req.Status)))
		}

		offered, requested, err := loadPair(ctx, tx.Events(), req.OfferedEventID, req.RequestedEventID)
		if err != nil {
			if errors.Is(err, events.ErrNotFound) {
				return fmt.Errorf("%w: a referenced slot no longer exists", ErrBadState)
			}
			return err
		}
		if offered.Status != events.StatusSwapPending || requested.Status != events.StatusSwapPending {
			return fmt.Errorf("%w: referenced slots are not pending", ErrBadState)
		}

		now := s.now()
		before := [2]events.Event{offered, requested}

		if accept {
			offered.OwnerID, requested.OwnerID = requested.OwnerID, offered.OwnerID
			offered.Status = events.StatusBusy
			requested.Status = events.StatusBusy
			if err := checkOwnershipSwap(before, offered, requested); err != nil {
				return err
			}
			req.Status = StatusAccepted
		} else {
			offered.Status = events.StatusSwappable
			requested.Status = events.StatusSwappable
			req.Status = StatusRejected
		}

		offered.UpdatedAt = now
		requested.UpdatedAt = now
		req.UpdatedAt = now
		req.RespondedAt = &now

		if err := tx.Events().Update(ctx, offered); err != nil {
			return err
		}
		if err := tx.Events().Update(ctx, requested); err != nil {
			return err
		}
		if err := tx.Requests().Update(ctx, req); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return SwapRequest{}, err
	}

	s.log.Info("swap responded", logger.Fields{
		"request_id": out.ID,
		"status":     string(out.Status),
	})
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, requestID string) (SwapRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return SwapRequest{}, ErrNotFound
	}
	return s.store.Requests().GetByID(ctx, requestID)
}

func (s *Service) ListAll(ctx context.Context) ([]SwapRequest, error) {
	return s.store.Requests().List(ctx)
}

// RequestView decora una solicitud con los slots actuales (nil si ya no existen).
type RequestView struct {
	Request        SwapRequest
	RequesterName  string
	OfferedEvent   *events.Event
	RequestedEvent *events.Event
}

type Inbox struct {
	Incoming []RequestView
	Outgoing []RequestView
}

// ListForViewer clasifica con la foto tomada al crear la solicitud:
// incoming si RequestedOwnerID == viewer, outgoing si RequesterID == viewer.
func (s *Service) ListForViewer(ctx context.Context, viewerID string) (Inbox, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return Inbox{}, ErrInvalidInput
	}

	all, err := s.store.Requests().List(ctx)
	if err != nil {
		return Inbox{}, err
	}

	// más recientes primero
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	inbox := Inbox{Incoming: []RequestView{}, Outgoing: []RequestView{}}
	for _, r := range all {
		incoming := r.RequestedOwnerID == viewerID
		outgoing := r.RequesterID == viewerID
		if !incoming && !outgoing {
			continue
		}

		v, err := s.view(ctx, r)
		if err != nil {
			return Inbox{}, err
		}
		if incoming {
			inbox.Incoming = append(inbox.Incoming, v)
		}
		if outgoing {
			inbox.Outgoing = append(inbox.Outgoing, v)
		}
	}
	return inbox, nil
}

func (s *Service) view(ctx context.Context, r SwapRequest) (RequestView, error) {
	v := RequestView{Request: r}
	if s.names != nil {
		v.RequesterName = s.names.ResolveName(ctx, r.RequesterID)
	}

	var err error
	if v.OfferedEvent, err = s.optionalEvent(ctx, r.OfferedEventID); err != nil {
		return RequestView{}, err
	}
	if v.RequestedEvent, err = s.optionalEvent(ctx, r.RequestedEventID); err != nil {
		return RequestView{}, err
	}
	return v, nil
}

func (s *Service) optionalEvent(ctx context.Context, id string) (*events.Event, error) {
	e, err := s.store.Events().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// RejectStale rechaza las solicitudes PENDING cuyo slot ofrecido o pedido ya empezó.
// Devuelve las solicitudes rechazadas. Una solicitud resuelta en paralelo se ignora.
func (s *Service) RejectStale(ctx context.Context, now time.Time) ([]SwapRequest, error) {
	all, err := s.store.Requests().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SwapRequest, 0)
	for _, r := range all {
		if r.Status != StatusPending {
			continue
		}
		stale, err := s.isStale(ctx, r, now)
		if err != nil {
			return out, err
		}
		if !stale {
			continue
		}

		rejected, err := s.Respond(ctx, r.ID, false)
		if err != nil {
			if errors.Is(err, ErrBadState) {
				continue
			}
			return out, err
		}
		out = append(out, rejected)
	}
	return out, nil
}

func (s *Service) isStale(ctx context.Context, r SwapRequest, now time.Time) (bool, error) {
	for _, id := range []string{r.OfferedEventID, r.RequestedEventID} {
		e, err := s.optionalEvent(ctx, id)
		if err != nil {
			return false, err
		}
		if e != nil && !e.StartTime.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// loadPair lee ambos eventos en orden de id para que dos operaciones
// concurrentes sobre el mismo par tomen los locks en el mismo orden.
func loadPair(ctx context.Context, repo events.Repository, offeredID, requestedID string) (events.Event, events.Event, error) {
	first, second := offeredID, requestedID
	if second < first {
		first, second = second, first
	}

	a, err := repo.GetByID(ctx, first)
	if err != nil {
		return events.Event{}, events.Event{}, err
	}
	b, err := repo.GetByID(ctx, second)
	if err != nil {
		return events.Event{}, events.Event{}, err
	}

	if first == offeredID {
		return a, b, nil
	}
	return b, a, nil
}

// checkOwnershipSwap: tras aceptar solo se mueve la propiedad, nunca el contenido.
func checkOwnershipSwap(before [2]events.Event, offered, requested events.Event) error {
	prevOffered, prevRequested := before[0], before[1]

	if offered.OwnerID != prevRequested.OwnerID || requested.OwnerID != prevOffered.OwnerID {
		return errors.New("swap post-condition failed: owners not exchanged")
	}
	if !sameContent(prevOffered, offered) || !sameContent(prevRequested, requested) {
		return errors.New("swap post-condition failed: event content changed")
	}
	return nil
}

func sameContent(a, b events.Event) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.StartTime.Equal(b.StartTime) &&
		a.EndTime.Equal(b.EndTime)
}

func invalidSlot(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSlot, detail)
}
