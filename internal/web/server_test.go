package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
	"github.com/KaramelBytes/sheetsift-cli/internal/links"
	"github.com/KaramelBytes/sheetsift-cli/internal/metrics"
	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

func newShared(t *testing.T) *session.Shared {
	t.Helper()
	s, err := dataset.New("usv.csv", []string{"Name", "Power", "Length", "Spec Sheet"}, [][]string{
		{"Alpha", "Diesel", "12", " https://a.example/spec.pdf "},
		{"Beta", "Solar-Diesel", "7", "TBD"},
		{"Gamma", "Electric", "9", ""},
	})
	require.NoError(t, err)
	return session.NewShared(s, links.NewPolicy(nil, ""), dataset.DefaultOptionBounds())
}

func newServer(t *testing.T, opt Options) *Server {
	t.Helper()
	return NewServer(newShared(t), opt)
}

// client carries one browser's session cookie across requests.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			c.cookie = ck
		}
	}
	return rec
}

func TestIndexRendersFullView(t *testing.T) {
	srv := newServer(t, Options{Title: "Fleet"})
	c := &client{t: t, h: srv.Handler()}

	rec := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie, "first visit sets the session cookie")
	assert.True(t, c.cookie.HttpOnly)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Fleet</title>")
	assert.Contains(t, body, "Loaded 3 rows × 4 columns")
	assert.Contains(t, body, "Showing 3 rows × 4 columns (of 3 × 4)")
	assert.Contains(t, body, `<a href="https://a.example/spec.pdf" target="_blank" rel="noopener">Open</a>`)
	assert.NotContains(t, body, "<td>TBD</td>", "invalid links render empty")
	assert.Contains(t, body, `<label for="c2">Spec Sheet</label>`)
	assert.NotContains(t, body, `<label for="c3">`, "numeric column gets no filter input")
	assert.Equal(t, 1, srv.Sessions().Len())
}

func TestFilterAndClearInSameResponse(t *testing.T) {
	srv := newServer(t, Options{})
	c := &client{t: t, h: srv.Handler()}
	c.do(http.MethodGet, "/", nil)

	rec := c.do(http.MethodPost, "/filter", url.Values{"q": {""}, "c1": {"diesel"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Showing 2 rows × 4 columns (of 3 × 4)")
	assert.Contains(t, body, `value="diesel"`)

	rec = c.do(http.MethodPost, "/clear", nil)
	body = rec.Body.String()
	assert.Contains(t, body, "Showing 3 rows × 4 columns (of 3 × 4)")
	assert.NotContains(t, body, `value="diesel"`, "inputs reset in the clearing response")
	assert.Equal(t, 1, srv.Sessions().Len(), "the cookie kept the same session")
}

func TestMultiSelectBecomesExactSet(t *testing.T) {
	srv := newServer(t, Options{})
	c := &client{t: t, h: srv.Handler()}
	c.do(http.MethodGet, "/", nil)

	rec := c.do(http.MethodPost, "/filter", url.Values{"s1": {"Electric", "Diesel"}, "c1": {"ignored"}})
	body := rec.Body.String()
	assert.Contains(t, body, "Showing 2 rows × 4 columns")
	assert.Contains(t, body, `<option value="Diesel" selected>`)
	assert.Contains(t, body, `<option value="Solar-Diesel">`)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newServer(t, Options{})
	h := srv.Handler()
	a := &client{t: t, h: h}
	b := &client{t: t, h: h}

	a.do(http.MethodGet, "/", nil)
	b.do(http.MethodGet, "/", nil)
	require.NotEqual(t, a.cookie.Value, b.cookie.Value)

	a.do(http.MethodPost, "/filter", url.Values{"q": {"gamma"}})
	rec := b.do(http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "Showing 3 rows")
	rec = a.do(http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "Showing 1 rows")
}

func TestExportDownloadsCurrentView(t *testing.T) {
	srv := newServer(t, Options{ExportFilename: "fleet"})
	c := &client{t: t, h: srv.Handler()}
	c.do(http.MethodPost, "/filter", url.Values{"c1": {"diesel"}})

	rec := c.do(http.MethodGet, "/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="fleet.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name,Power,Length,Spec Sheet\nAlpha,Diesel,12,\" https://a.example/spec.pdf \"\nBeta,Solar-Diesel,7,TBD\n", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := newServer(t, Options{Metrics: metrics.New(reg), Gatherer: reg})
	c := &client{t: t, h: srv.Handler()}
	c.do(http.MethodPost, "/filter", url.Values{"q": {"alpha"}})

	rec := c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sheetsift_filter_cycles_total{trigger="batch"} 1`)
	assert.Contains(t, body, "sheetsift_web_sessions 1")
}

func TestMetricsDisabledWithoutGatherer(t *testing.T) {
	c := &client{t: t, h: newServer(t, Options{}).Handler()}
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/metrics", nil).Code)
}

func TestMethodsAndPaths(t *testing.T) {
	c := &client{t: t, h: newServer(t, Options{}).Handler()}
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, c.do(http.MethodGet, "/filter", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, c.do(http.MethodGet, "/clear", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, c.do(http.MethodPost, "/export.csv", nil).Code)
	rec := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestMaxRowsWindow(t *testing.T) {
	c := &client{t: t, h: newServer(t, Options{MaxRows: 2}).Handler()}
	body := c.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "displaying the first 2 rows")
	assert.NotContains(t, body, "<td>Gamma</td>")
}

func TestSessionExpiryAndEviction(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	srv := newServer(t, Options{SessionTTL: time.Minute, MaxSessions: 2})
	srv.sessions.now = func() time.Time { return now }
	h := srv.Handler()

	a := &client{t: t, h: h}
	a.do(http.MethodPost, "/filter", url.Values{"q": {"gamma"}})
	first := a.cookie.Value

	now = now.Add(30 * time.Second)
	a.do(http.MethodGet, "/", nil)
	assert.Equal(t, first, a.cookie.Value, "active session survives")

	now = now.Add(2 * time.Minute)
	rec := a.do(http.MethodGet, "/", nil)
	assert.NotEqual(t, first, a.cookie.Value, "idle session expired")
	assert.Contains(t, rec.Body.String(), "Showing 3 rows", "new session starts unfiltered")

	b := &client{t: t, h: h}
	now = now.Add(time.Second)
	b.do(http.MethodGet, "/", nil)
	d := &client{t: t, h: h}
	now = now.Add(time.Second)
	d.do(http.MethodGet, "/", nil)
	assert.Equal(t, 2, srv.Sessions().Len(), "oldest session evicted at capacity")

	stale := a.cookie.Value
	a.do(http.MethodGet, "/", nil)
	assert.NotEqual(t, stale, a.cookie.Value)
}

func TestListenAndServeShutsDown(t *testing.T) {
	srv := newServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a })
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr.String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
