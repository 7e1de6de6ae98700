// Package replay runs scripted event sequences through a fully wired
// dialogue controller, entirely in memory. Used by cmd/replay to exercise
// survey flows without a Telegram connection, and by tests.
package replay

import (
	"context"
	"errors"
	"strings"

	"github.com/borovskvet/intake-bot/internal/dialog"
	"github.com/borovskvet/intake-bot/internal/record"
	"github.com/borovskvet/intake-bot/internal/search"
	"github.com/borovskvet/intake-bot/internal/session"
)

// #region types

// Exchange pairs one scripted event with the controller's reply.
type Exchange struct {
	Event dialog.Event
	Reply dialog.Reply
}

// Summary aggregates a replay run.
type Summary struct {
	Turns      int
	Rejections int
	Records    [][]string // rows appended during the run
}

// #endregion types

// #region capture-sink

// CaptureSink is an in-memory record.Sink that collects appended rows and
// serves pre-seeded records to the search engine. FailAppend makes every
// append fail, for exercising the finalize failure path.
type CaptureSink struct {
	Rows       [][]string
	Seeded     []record.Stored
	FailAppend bool
}

// Append implements record.Sink.
func (s *CaptureSink) Append(_ context.Context, row []string) error {
	if s.FailAppend {
		return errors.New("capture sink: append disabled")
	}
	s.Rows = append(s.Rows, row)
	return nil
}

// Query implements record.Sink.
func (s *CaptureSink) Query(_ context.Context) ([]record.Stored, error) {
	return s.Seeded, nil
}

// #endregion capture-sink

// #region harness

// Harness owns the wired-together controller and its capture sink.
type Harness struct {
	Sink       *CaptureSink
	Repo       *session.MemoryRepository
	Controller *dialog.Controller
}

// NewHarness wires a controller against fresh in-memory state.
func NewHarness(sink *CaptureSink) *Harness {
	if sink == nil {
		sink = &CaptureSink{}
	}
	repo := session.NewMemoryRepository(0)
	controller := dialog.NewController(repo, record.NewFinalizer(sink), search.NewEngine(sink), nil)
	return &Harness{Sink: sink, Repo: repo, Controller: controller}
}

// Run feeds the events through the controller in order.
func (h *Harness) Run(ctx context.Context, events []dialog.Event) ([]Exchange, Summary) {
	exchanges := make([]Exchange, 0, len(events))
	sum := Summary{}

	for _, ev := range events {
		reply := h.Controller.Handle(ctx, ev)
		exchanges = append(exchanges, Exchange{Event: ev, Reply: reply})
		sum.Turns++
		if strings.HasPrefix(reply.Text, "🟡") {
			sum.Rejections++
		}
	}

	sum.Records = h.Sink.Rows
	return exchanges, sum
}

// #endregion harness
