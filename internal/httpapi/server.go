package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"concertlog/internal/app/concerts"
	"concertlog/internal/app/users"
	"concertlog/internal/autofill"
	"concertlog/internal/concert"
	"concertlog/internal/http/middleware"
	"concertlog/internal/logging"
	"concertlog/internal/pipeline"
	"concertlog/internal/store"
	"concertlog/internal/validator"
)

// maxUploadBytes bounds the autofill file upload.
const maxUploadBytes = 10 << 20

// UserService captures the user-facing operations needed by the HTTP handlers.
type UserService interface {
	Login(ctx context.Context, email, password string, remember bool) (users.Session, error)
	CurrentUser(ctx context.Context, token string) (store.User, error)
}

// ConcertService coordinates concert-related operations.
type ConcertService interface {
	View(ctx context.Context, q pipeline.Query) (concerts.View, error)
	Facets(ctx context.Context) (pipeline.Facets, error)
	Stats(ctx context.Context, top int) (pipeline.Statistics, error)
	ArtistConcerts(ctx context.Context, artist string) ([]concert.Record, error)
	SuggestArtists(ctx context.Context, pattern string, limit int) ([]string, error)
	Get(ctx context.Context, id string) (concert.Record, error)
	Create(ctx context.Context, d concert.Draft, opts concert.WriteOptions) (concert.Record, error)
	Update(ctx context.Context, id string, patch concert.Draft, opts concert.WriteOptions) (concert.Record, error)
	Delete(ctx context.Context, id string) error
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger      *logging.Logger
	CORSOrigins []string
	// Extractor enables the autofill routes; nil answers them with 503.
	Extractor autofill.Extractor
	// Limiter throttles the autofill routes per client IP.
	Limiter *middleware.RateLimiter
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	concerts  ConcertService
	users     UserService
	extractor autofill.Extractor
	limiter   *middleware.RateLimiter
	logger    *logging.Logger
	origins   []string
}

// New configures a Server with the given services.
func New(concerts ConcertService, users UserService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		concerts:  concerts,
		users:     users,
		extractor: opts.Extractor,
		limiter:   opts.Limiter,
		logger:    logger,
		origins:   opts.CORSOrigins,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogging(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.CORS(s.origins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Get("/auth/session", s.handleSession)

		r.Get("/concerts", s.handleListConcerts)
		r.Get("/concerts/facets", s.handleFacets)
		r.Get("/concerts/{id}", s.handleGetConcert)
		r.Get("/stats", s.handleStats)
		r.Get("/artists", s.handleSuggestArtists)
		r.Get("/artists/{name}/concerts", s.handleArtistConcerts)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/concerts", s.handleCreateConcert)
			r.Put("/concerts/{id}", s.handleReplaceConcert)
			r.Patch("/concerts/{id}", s.handlePatchConcert)
			r.Delete("/concerts/{id}", s.handleDeleteConcert)

			r.Route("/autofill", func(r chi.Router) {
				if s.limiter != nil {
					r.Use(s.limiter.Middleware)
				}
				r.Post("/text", s.handleAutofillText)
				r.Post("/file", s.handleAutofillFile)
				r.Post("/venue", s.handleAutofillVenue)
			})
		})
	})

	return r
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeServiceError maps service and store errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields *validator.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: fields.Fields})
	case errors.Is(err, store.ErrConcertNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "concert not found"})
	case errors.Is(err, store.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
	case errors.Is(err, users.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
	case errors.Is(err, store.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "user already exists"})
	case errors.Is(err, autofill.ErrEmptyInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, autofill.ErrUnsupportedFile):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
	case errors.Is(err, autofill.ErrBadResponse):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		s.logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	return true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
