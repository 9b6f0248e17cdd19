package shortcodes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

const maxRequestBodySize = 64 << 10

type shortenRequest struct {
	URL string `json:"url"`
}

type shortenResponse struct {
	ShortURL string `json:"short_url"`
}

type Server struct {
	shortener *Shortener
	logger    *zap.Logger
}

// NewServer returns a new Server handing requests to sh and logging to l.
// If l is nil, nothing is logged.
func NewServer(sh *Shortener, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}

	return &Server{
		shortener: sh,
		logger:    l,
	}
}

// SetupRoutes registers middleware plus the shorten, resolve and metrics handlers on the router.
func (s *Server) SetupRoutes(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.shortener.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Post("/shorten", s.shorten)
	r.Method(http.MethodGet, "/metrics", s.shortener.metrics.Handler())
	r.Get("/{code:[a-zA-Z0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		// we proxy the call to s.resolve through this "middleware" to resolve the code URL parameter
		s.resolve(w, r, chi.URLParam(r, "code"))
	})
}

// writeError writes a printf-formatted response using the specified status code to the client.
func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, format+"\n", args...)
}

// shorten handles POST requests with a JSON body holding the URL to shorten.
// It responds with the absolute short URL the client can use instead in the future.
func (s *Server) shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: %v", err)
		return
	}

	shortURL, err := s.shortener.Shorten(r.Context(), req.URL)
	if err != nil {
		switch {
		case xerrors.Is(err, ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "%v", err)
		case xerrors.Is(err, ErrRetryExhausted):
			s.logger.Error("no free code found", zap.String("op", "shorten"), zap.String("request_id", middleware.GetReqID(r.Context())))
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			s.logger.Error("shortening failed", zap.String("op", "shorten"), zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(shortenResponse{ShortURL: shortURL})
	if err != nil {
		s.logger.Warn("writing response failed", zap.String("op", "shorten"), zap.Error(err))
	}
}

// resolve handles all requests where the request path could be a code.
// If a URL is mapped to the code, the client is permanently redirected to it.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request, code string) {
	longURL, err := s.shortener.Resolve(r.Context(), code)
	if err != nil {
		if xerrors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "URL Not Found")
			return
		}
		s.logger.Error("resolving failed", zap.String("op", "resolve"), zap.String("code", code), zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// the stored URL goes out verbatim, http.Redirect would rewrite relative targets
	w.Header().Set("Location", longURL)
	w.WriteHeader(http.StatusPermanentRedirect)
}

// logRequests writes one access log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
