package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	appkafka "example.com/campusfeed/internal/broker"
	"example.com/campusfeed/internal/logger"
	"example.com/campusfeed/internal/metrics"
	"example.com/campusfeed/internal/middleware"
	"example.com/campusfeed/internal/realtime"
	"example.com/campusfeed/internal/store"
	"example.com/campusfeed/internal/upload"
)

var logg = logger.New()

// Options are the listener and surface settings of the server.
type Options struct {
	Addr           string
	ClientOrigin   string
	CORSOrigins    []string
	UploadDir      string
	UploadMaxBytes int64
	TLSCertFile    string
	TLSKeyFile     string
}

type Server struct {
	store  store.StoreInterface
	events appkafka.Publisher
	hub    *realtime.Hub
	saver  *upload.Saver
	opts   Options
}

func New(st store.StoreInterface, events appkafka.Publisher, hub *realtime.Hub, opts Options) *Server {
	if events == nil {
		events = appkafka.NopPublisher{}
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = 10 << 20
	}
	return &Server{
		store:  st,
		events: events,
		hub:    hub,
		saver:  upload.NewSaver(opts.UploadDir),
		opts:   opts,
	}
}

// Handler wires every route. REST routes go through CORS and metrics; the
// websocket route does its own origin check and is left unwrapped.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	route := func(pattern, name string, h http.HandlerFunc) {
		api.Handle(pattern, middleware.Instrument(name, h))
	}

	route("POST /signup", "/signup", s.signupHandler)
	route("POST /signin", "/signin", s.signinHandler)
	route("POST /post", "/post", s.createPostHandler)
	route("GET /posts", "/posts", s.listPostsHandler)
	route("GET /usernames", "/usernames", s.listUsernamesHandler)
	route("POST /upload", "/upload", s.uploadHandler)
	api.Handle("GET /uploads/", filesOnly(http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.opts.UploadDir)))))

	route("GET /healthz", "/healthz", s.healthHandler)
	route("GET /readyz", "/readyz", s.readyHandler)
	api.Handle("GET /metrics", metrics.Handler())

	root := http.NewServeMux()
	root.Handle("GET /ws", realtime.NewHandler(s.hub, s.opts.ClientOrigin))
	root.Handle("/", middleware.CORS(s.opts.CORSOrigins, api))
	return root
}

// filesOnly answers 404 for directory paths so stored names are never listed.
func filesOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)

	// --- Start server in a goroutine ---
	go func() {
		var err error
		if s.opts.TLSCertFile != "" && s.opts.TLSKeyFile != "" {
			logg.Info("server", "Starting HTTPS server on "+s.opts.Addr)
			err = srv.ListenAndServeTLS(s.opts.TLSCertFile, s.opts.TLSKeyFile)
		} else {
			logg.Info("server", "Starting HTTP server on "+s.opts.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful shutdown ---
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown closes the listener but does not track hijacked websocket
	// connections; closing the hub afterwards also catches late upgrades.
	err := srv.Shutdown(shutdownCtx)
	s.hub.Close()
	if err != nil {
		logg.Error("server", "Error during server shutdown", err)
		return err
	}
	logg.Info("server", "Server stopped gracefully")
	return nil
}
