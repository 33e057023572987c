// Package reminder records notifications for todos that are about to
// come due.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/todocal/internal/logging"
	"github.com/nhle/todocal/internal/model"
)

// State is the current state of the poller loop.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// Status is a snapshot of the poller.
type Status struct {
	State   State
	LastRun time.Time
	Created int
	Err     error
}

// ResultMsg is sent after every run. It doubles as a tea.Msg so a
// terminal view can refresh when reminders fire.
type ResultMsg struct {
	Created int
	Err     error
}

// Store is the slice of persistence the poller needs.
type Store interface {
	ListDueBetween(ctx context.Context, date model.Date, from, to model.TimeOfDay) ([]model.Todo, error)
	CreateNotification(ctx context.Context, n *model.Notification) (bool, error)
}

// fetchTimeout bounds a single run.
const fetchTimeout = 30 * time.Second

const defaultInterval = time.Minute

var endOfDay = model.TimeOfDay{Hour: 23, Minute: 59, Second: 59}

// Poller periodically looks for open todos due within the lead window
// and records one notification per todo and due date.
type Poller struct {
	store    Store
	interval time.Duration
	lead     time.Duration
	now      func() time.Time
	logger   *log.Logger

	resultCh  chan ResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	running bool
	status  Status
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock sets the time source. The returned time's location decides
// which calendar day is "today".
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

// New creates a stopped Poller.
func New(s Store, interval, lead time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	p := &Poller{
		store:     s,
		interval:  interval,
		lead:      lead,
		now:       time.Now,
		logger:    logging.Discard(),
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling goroutine, which runs once immediately and
// then on every tick. Calling Start on a running poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})

	go p.loop(p.stopCh, p.done)
	p.logger.Info("reminder poller started", "interval", p.interval, "lead", p.lead)
}

// Stop halts the polling goroutine and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	done := p.done
	p.running = false
	p.mu.Unlock()

	<-done
	p.logger.Info("reminder poller stopped")
}

// Trigger requests an immediate run. Requests made while one is already
// pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the latest poller state.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Results delivers one ResultMsg per run. Results are dropped when
// nobody reads them.
func (p *Poller) Results() <-chan ResultMsg {
	return p.resultCh
}

// WaitForResult returns a tea.Cmd that blocks until the next run
// finishes. Call it again after each ResultMsg to keep listening.
func (p *Poller) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

func (p *Poller) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runAndReport()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.runAndReport()
		case <-p.triggerCh:
			p.runAndReport()
		}
	}
}

func (p *Poller) runAndReport() {
	p.setStatus(StateRunning, 0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	created, err := p.RunOnce(ctx)
	if err != nil {
		p.logger.Error("reminder run failed", "err", err)
		p.setStatus(StateError, created, err)
	} else {
		if created > 0 {
			p.logger.Info("reminders recorded", "count", created)
		}
		p.setStatus(StateIdle, created, nil)
	}

	select {
	case p.resultCh <- ResultMsg{Created: created, Err: err}:
	default:
	}
}

// RunOnce checks the current lead window and records notifications.
// It returns how many new notifications were stored. The window never
// extends past the end of today.
func (p *Poller) RunOnce(ctx context.Context) (int, error) {
	now := p.now()
	today := model.DateOf(now)
	from := model.TimeOf(now)
	to := endOfDay
	if until := now.Add(p.lead); model.DateOf(until) == today {
		to = model.TimeOf(until)
	}

	due, err := p.store.ListDueBetween(ctx, today, from, to)
	if err != nil {
		return 0, fmt.Errorf("listing todos due %s %s-%s: %w", today, from, to, err)
	}

	created := 0
	for _, todo := range due {
		n := &model.Notification{
			UserID:  todo.UserID,
			TodoID:  todo.ID,
			DueDate: today,
			Message: message(todo),
		}
		ok, err := p.store.CreateNotification(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created++
			p.logger.Debug("reminder recorded", "user", todo.UserID, "todo", todo.ID)
		}
	}
	return created, nil
}

func message(todo model.Todo) string {
	if todo.DueTime == nil {
		return fmt.Sprintf("%q is due today", todo.Title)
	}
	return fmt.Sprintf("%q is due at %02d:%02d", todo.Title, todo.DueTime.Hour, todo.DueTime.Minute)
}

func (p *Poller) setStatus(state State, created int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Err = err
	if state != StateRunning {
		p.status.LastRun = p.now()
		p.status.Created = created
	}
}
