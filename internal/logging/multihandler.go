package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sink is a named destination for log records.
type Sink struct {
	Name    string
	Handler slog.Handler
}

// FanoutHandler sends every record to each live sink. A sink whose Handle
// fails is dropped for the rest of the process and the drop is reported
// once to the sinks that remain.
type FanoutHandler struct {
	sinks []Sink
	state *sinkState
}

// sinkState is shared by a handler and everything derived from it through
// WithAttrs and WithGroup, so a drop seen by one applies to all.
type sinkState struct {
	mu      sync.Mutex
	dropped map[string]error
}

func (s *sinkState) isDropped(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dropped[name]
	return ok
}

// drop marks name as failed and reports whether this call was the first.
func (s *sinkState) drop(name string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dropped[name]; ok {
		return false
	}
	s.dropped[name] = err
	return true
}

// NewFanoutHandler builds a handler over sinks, ignoring those without a handler.
func NewFanoutHandler(sinks ...Sink) *FanoutHandler {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Handler != nil {
			valid = append(valid, s)
		}
	}
	return &FanoutHandler{
		sinks: valid,
		state: &sinkState{dropped: make(map[string]error)},
	}
}

// Dropped returns the error that caused name to be dropped, or nil.
func (f *FanoutHandler) Dropped(name string) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return f.state.dropped[name]
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range f.sinks {
		if !f.state.isDropped(s.Name) && s.Handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	failed := f.dispatch(ctx, r)
	// reports can fail too, so keep going until a round drops nothing
	for len(failed) > 0 {
		var next []Sink
		for _, s := range failed {
			report := slog.NewRecord(time.Now(), slog.LevelWarn, "log sink dropped", 0)
			report.AddAttrs(
				slog.String("sink", s.Name),
				slog.String("error", f.Dropped(s.Name).Error()),
			)
			next = append(next, f.dispatch(ctx, report)...)
		}
		failed = next
	}
	return nil
}

// dispatch hands r to each live sink and returns the sinks it dropped.
func (f *FanoutHandler) dispatch(ctx context.Context, r slog.Record) []Sink {
	var failed []Sink
	for _, s := range f.sinks {
		if f.state.isDropped(s.Name) || !s.Handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handler.Handle(ctx, r.Clone()); err != nil {
			if f.state.drop(s.Name, err) {
				failed = append(failed, s)
			}
		}
	}
	return failed
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *FanoutHandler) derive(wrap func(slog.Handler) slog.Handler) *FanoutHandler {
	sinks := make([]Sink, len(f.sinks))
	for i, s := range f.sinks {
		sinks[i] = Sink{Name: s.Name, Handler: wrap(s.Handler)}
	}
	return &FanoutHandler{sinks: sinks, state: f.state}
}
