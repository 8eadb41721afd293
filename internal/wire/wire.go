package wire

import (
	"net/http"
	"strings"

	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi service, handler dan router
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger, deps usecase.Dependencies) *App {
	service := usecase.NewService(repo, config, logger, deps)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, repo, config, logger),
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(handler *adaptor.Handler, repo *repository.Repository, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireEvent(r, handler.Event, repo, logger)
	wireOrder(r, handler.Order, repo, logger)
	wirePayment(r, handler.Payment, repo, logger)
	wireTicket(r, handler.Ticket, repo, logger)

	// QR code & screenshot, path-nya sama dengan MEDIA_URL
	if config.Media.Root != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(strings.TrimSuffix(config.Media.Root, "/")))))
	}

	r.Handle("/metrics", metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
