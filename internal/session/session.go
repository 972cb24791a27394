// Package session runs the interaction loop: apply user actions to a
// filter store, evaluate, and publish a View, one atomic cycle at a time.
package session

import (
	"io"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
	"github.com/KaramelBytes/sheetsift-cli/internal/export"
	"github.com/KaramelBytes/sheetsift-cli/internal/filter"
	"github.com/KaramelBytes/sheetsift-cli/internal/metrics"
)

// Phase is the state of the interaction loop.
type Phase int

const (
	Idle Phase = iota
	Recomputing
)

func (p Phase) String() string {
	if p == Recomputing {
		return "recomputing"
	}
	return "idle"
}

// Options configures a Session.
type Options struct {
	ID      string
	Logger  log.Logger
	Metrics *metrics.Metrics
}

// Session owns one filter store over a Shared dataset. Dispatch, View and
// Export are serialized by a mutex, so a cycle always completes before the
// next one starts.
type Session struct {
	mu      sync.Mutex
	id      string
	shared  *Shared
	store   *filter.Store
	phase   Phase
	seq     uint64
	view    *View
	logger  log.Logger
	metrics *metrics.Metrics
}

// New creates a session and publishes the unfiltered view.
func New(shared *Shared, opt Options) *Session {
	if opt.ID == "" {
		opt.ID = uuid.NewString()
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}
	s := &Session{
		id:      opt.ID,
		shared:  shared,
		store:   filter.NewStore(),
		logger:  log.With(opt.Logger, "session", opt.ID),
		metrics: opt.Metrics,
	}
	s.mu.Lock()
	s.cycle("init", nil)
	s.mu.Unlock()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Shared returns the dataset side of the session.
func (s *Session) Shared() *Shared { return s.shared }

// Phase returns the current loop state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Dispatch applies actions in order and runs exactly one cycle. The
// returned View already reflects every action, including ClearAll.
func (s *Session) Dispatch(actions ...Action) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle(trigger(actions), actions)
}

// View returns the last published view without recomputing.
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// State returns a copy of the current filter state.
func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Current()
}

// Revision returns the store revision.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Revision()
}

// Export writes the last published view as CSV. It never evaluates.
func (s *Session) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := export.WriteCSV(w, s.view); err != nil {
		return err
	}
	s.metrics.ObserveExport()
	return nil
}

// cycle runs one Idle -> Recomputing -> Idle pass. Caller holds s.mu.
func (s *Session) cycle(trigger string, actions []Action) *View {
	s.phase = Recomputing
	start := time.Now()

	for _, a := range actions {
		a.apply(s.store)
	}
	st := s.store.Current()
	res := s.shared.engine.Evaluate(st)

	snap := s.shared.snap
	s.seq++
	v := &View{
		Seq:         s.seq,
		Trigger:     trigger,
		Columns:     snap.Columns(),
		Rows:        res.Rows,
		TotalRows:   snap.Len(),
		LinkColumns: append([]string(nil), s.shared.links.Columns...),
		Warnings:    res.Warnings,
		State:       st,
		snap:        snap,
		source:      s.shared.source,
	}
	for _, w := range res.Warnings {
		level.Warn(s.logger).Log("msg", "filter criterion not applied", "err", w)
	}
	took := time.Since(start)
	s.metrics.ObserveCycle(trigger, took, v.Len(), len(res.Warnings))
	level.Debug(s.logger).Log("msg", "cycle complete", "trigger", trigger, "seq", v.Seq, "rows", v.Len(), "took", took)

	s.view = v
	s.phase = Idle
	return v
}

// FilterColumn describes one categorical column's filter input as it
// should be rendered after the last cycle.
type FilterColumn struct {
	Name     string
	Options  []string
	Offered  bool
	Input    string
	Selected []string
}

// FilterColumns lists the categorical columns with their offered options
// and the current input text, rebuilt from the store so a reset is visible
// immediately.
func (s *Session) FilterColumns() []FilterColumn {
	s.mu.Lock()
	st := s.store.Current()
	s.mu.Unlock()

	var out []FilterColumn
	for _, c := range s.shared.snap.Columns() {
		if c.Kind != dataset.KindCategorical {
			continue
		}
		fc := FilterColumn{Name: c.Name, Options: s.shared.Offered(c.Name)}
		fc.Offered = fc.Options != nil
		if cr, ok := st.Criteria[c.Name]; ok {
			fc.Input = cr.Display()
			if cr.Kind == filter.ExactSet {
				fc.Selected = append([]string(nil), cr.Values...)
			}
		}
		out = append(out, fc)
	}
	return out
}

// GlobalInput returns the literal global keyword text.
func (s *Session) GlobalInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Current().Global
}
