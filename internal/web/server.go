// Package web serves the browser surface of sheetsift: one HTML page with
// per-column filters, a global search box, a clear-all button and a CSV
// download, with an independent filter session per browser.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/sheetsift-cli/internal/export"
	"github.com/KaramelBytes/sheetsift-cli/internal/filter"
	"github.com/KaramelBytes/sheetsift-cli/internal/metrics"
	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

// Options configures the web surface.
type Options struct {
	Title          string
	ExportFilename string
	LinkLabel      string
	MaxRows        int
	SessionTTL     time.Duration
	MaxSessions    int
	Logger         log.Logger
	Metrics        *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server holds the handlers over one shared dataset.
type Server struct {
	shared   *session.Shared
	sessions *Sessions
	opt      Options
	tmpl     *template.Template
	logger   log.Logger
}

// NewServer builds a Server. Zero-valued options get defaults.
func NewServer(shared *session.Shared, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}
	if opt.Title == "" {
		opt.Title = "sheetsift"
	}
	opt.ExportFilename = export.Filename(opt.ExportFilename, "filtered_data.csv")
	if opt.SessionTTL <= 0 {
		opt.SessionTTL = 30 * time.Minute
	}
	if opt.MaxSessions <= 0 {
		opt.MaxSessions = 64
	}
	return &Server{
		shared:   shared,
		sessions: NewSessions(shared, opt.SessionTTL, opt.MaxSessions, opt.Logger, opt.Metrics),
		opt:      opt,
		tmpl:     template.Must(template.New("page").Funcs(template.FuncMap{
			"selected": contains,
		}).Parse(pageTemplate)),
		logger:   opt.Logger,
	}
}

// Sessions exposes the session table.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Handler returns the compressed, access-logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/filter", s.handleFilter)
	mux.HandleFunc("/clear", s.handleClear)
	mux.HandleFunc("/export.csv", s.handleExport)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.opt.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.opt.Gatherer, promhttp.HandlerOpts{}))
	}
	return s.accessLog(gzhttp.GzipHandler(mux))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.Get(w, r)
	s.renderPage(w, sess, sess.View())
}

// handleFilter applies the whole submitted form as one cycle and renders
// the resulting page in the same response.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("bad form: %v", err), http.StatusBadRequest)
		return
	}
	sess := s.sessions.Get(w, r)
	s.renderPage(w, sess, sess.Dispatch(formActions(sess.FilterColumns(), r)...))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.Get(w, r)
	s.renderPage(w, sess, sess.Dispatch(session.ClearAll()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.Get(w, r)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opt.ExportFilename))
	if err := sess.Export(w); err != nil {
		level.Error(s.logger).Log("msg", "export failed", "session", sess.ID(), "err", err)
	}
}

// formActions maps form fields to actions: "q" is the global keyword,
// "c<i>" the text box and "s<i>" the multi-select of the i-th filter
// column. A non-empty selection wins over the text box.
func formActions(cols []session.FilterColumn, r *http.Request) []session.Action {
	actions := make([]session.Action, 0, len(cols)+1)
	actions = append(actions, session.SetGlobalKeyword(r.PostForm.Get("q")))
	for i, c := range cols {
		idx := strconv.Itoa(i)
		if sel := r.PostForm["s"+idx]; c.Offered && len(sel) > 0 {
			actions = append(actions, session.SetCriterion(c.Name, filter.NewExactSet(sel...)))
			continue
		}
		actions = append(actions, session.InputAction(c.Name, r.PostForm.Get("c"+idx)))
	}
	return actions
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		level.Debug(s.logger).Log("msg", "http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		level.Info(s.logger).Log("msg", "shutting down", "addr", ln.Addr().String())
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
