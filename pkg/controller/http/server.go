package http

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/frontend"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
	"github.com/secmon-lab/hovertodo/pkg/utils/safe"
)

// maxBodySize limits every API request body
const maxBodySize = 1 << 20

type Server struct {
	router    *chi.Mux
	assistant AssistantUseCase
	tasks     TaskUseCase
	staticFS  fs.FS
}

type Options func(*Server)

func WithAssistant(uc AssistantUseCase) Options {
	return func(s *Server) {
		s.assistant = uc
	}
}

func WithTasks(uc TaskUseCase) Options {
	return func(s *Server) {
		s.tasks = uc
	}
}

// WithStaticFS replaces the embedded frontend build
func WithStaticFS(fsys fs.FS) Options {
	return func(s *Server) {
		s.staticFS = fsys
	}
}

func New(opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(maxBodySize))

		if s.assistant != nil {
			r.Post("/suggestion", suggestionHandler(s.assistant))
			r.Post("/classify", classifyHandler(s.assistant))
			r.Post("/meme", memeHandler(s.assistant))
		}

		if s.tasks != nil {
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", listTasksHandler(s.tasks))
				r.Post("/", addTaskHandler(s.tasks))
				r.Post("/{id}/toggle", toggleTaskHandler(s.tasks))
				r.Delete("/{id}", removeTaskHandler(s.tasks))
			})
		}
	})

	// Static file serving for SPA (catch-all, must be last)
	if s.staticFS == nil {
		staticFS, err := fs.Sub(frontend.StaticFiles, "dist")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to bind dist dir for static")
		}
		s.staticFS = staticFS
	}

	r.Get("/*", spaHandler(s.staticFS))

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")

		if urlPath == "" {
			urlPath = "index.html"
		}

		file, err := staticFS.Open(urlPath)
		if err != nil {
			// Unknown path, let the client side router handle it
			indexFile, err := staticFS.Open("index.html")
			if err != nil {
				http.NotFound(w, r)
				return
			}
			defer safe.Close(r.Context(), indexFile)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			safe.Copy(r.Context(), w, indexFile)
			return
		}
		safe.Close(r.Context(), file)

		fileServer.ServeHTTP(w, r)
	}
}
