package router

import (
	"context"
	"net/http"

	"slot-swapper/internal/adapters/auth/session"
	"slot-swapper/internal/adapters/storage"
	mem "slot-swapper/internal/adapters/storage/memory"
	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/marketplace"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"
	"slot-swapper/internal/middleware"
	"slot-swapper/internal/platform/logger"

	_ "slot-swapper/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NameResolver permite reemplazar el directorio local de usuarios (ej: identity/directory).
type NameResolver interface {
	ResolveName(ctx context.Context, userID string) string
}

type Options struct {
	// Opcional: si no viene, in-memory.
	Store storage.Backend

	// Opcional: si no viene, se crea un session.Store en memoria.
	Sessions *session.Store

	// Opcional: si no viene, los nombres salen de users.Service.
	Names NameResolver

	// DisableDebugHeader apaga X-Debug-User-ID (solo Bearer).
	DisableDebugHeader bool

	Logger logger.Logger
}

// Services agrupa los services por módulo, compartidos entre HTTP y jobs.
type Services struct {
	Users       *users.Service
	Events      *events.Service
	Swaps       *swaps.Service
	Marketplace *marketplace.Service

	sessions *session.Store
}

func NewServices(opts Options) Services {
	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(0)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	usersSvc := users.NewService(store.Users(), sessions)

	var names NameResolver = usersSvc
	if opts.Names != nil {
		names = opts.Names
	}

	return Services{
		Users:       usersSvc,
		Events:      events.NewService(store),
		Swaps:       swaps.NewService(store, names, log),
		Marketplace: marketplace.NewService(store.Events(), names),
		sessions:    sessions,
	}
}

// NewHandler monta middlewares y rutas sobre services ya construidos.
func NewHandler(svcs Services, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(svcs.sessions, !opts.DisableDebugHeader))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	users.RegisterRoutes(r, svcs.Users)
	events.RegisterRoutes(r, svcs.Events)
	marketplace.RegisterRoutes(r, svcs.Marketplace)
	swaps.RegisterRoutes(r, svcs.Swaps)

	return r
}

func NewRouter(opts Options) http.Handler {
	return NewHandler(NewServices(opts), opts)
}
