package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-warehouse/internal/apperror"
	"go-warehouse/pkg/database"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrBusy is returned by Submit while another task is still active.
var ErrBusy = errors.New("another background task is still running")

type EventType string

const (
	EventProgress EventType = "task_progress"
	EventFinished EventType = "task_finished"
)

// Event is one progress update or the final report of a task. For a given
// task, events arrive in order and the finished event is always last.
type Event struct {
	TaskID   uuid.UUID `json:"task_id"`
	Kind     Kind      `json:"kind"`
	Type     EventType `json:"type"`
	Progress Progress  `json:"progress"`
	Result   *Result   `json:"result,omitempty"`
}

// Listener is called synchronously on the task goroutine for every event, so
// it must return quickly.
type Listener func(Event)

// Runner executes at most one Task at a time.
type Runner struct {
	open      database.Opener
	log       zerolog.Logger
	listeners []Listener

	slot chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	current *Handle
}

func NewRunner(open database.Opener, log zerolog.Logger, listeners ...Listener) *Runner {
	return &Runner{
		open:      open,
		log:       log.With().Str("component", "task_runner").Logger(),
		listeners: listeners,
		slot:      make(chan struct{}, 1),
	}
}

// Submit starts task in the background and returns immediately. The task
// does not inherit cancellation from ctx; once started it runs to the end.
func (r *Runner) Submit(ctx context.Context, task Task) (*Handle, error) {
	select {
	case r.slot <- struct{}{}:
	default:
		return nil, ErrBusy
	}

	h := newHandle(task)
	r.mu.Lock()
	r.current = h
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(context.WithoutCancel(ctx), h, task)
	return h, nil
}

// Busy reports whether a task is active.
func (r *Runner) Busy() bool {
	return len(r.slot) > 0
}

// Current returns the most recently submitted task, or nil.
func (r *Runner) Current() *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Shutdown waits for the active task, if any, to finish.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, h *Handle, task Task) {
	defer r.wg.Done()
	// free the slot before waking waiters so a follow-up Submit succeeds
	defer func() {
		<-r.slot
		close(h.done)
	}()

	log := r.log.With().Str("task_id", h.ID.String()).Str("kind", string(h.Kind)).Str("path", h.Path).Logger()
	h.start()
	log.Info().Msg("task started")

	result := r.execute(ctx, h, task)

	ev := h.finish(result)
	r.notify(ev)

	evt := log.Info()
	if !result.Success {
		evt = log.Error()
	}
	evt.Bool("success", result.Success).Int("rows", result.Rows).Dur("took", h.Snapshot().Duration()).Msg(result.Message)
}

func (r *Runner) execute(ctx context.Context, h *Handle, task Task) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			result = failure(fmt.Errorf("task aborted: %v", p))
		}
	}()

	db, err := r.open()
	if err != nil {
		return failure(&apperror.ConnectionError{Err: err})
	}
	defer func() {
		if err := database.Close(db); err != nil {
			r.log.Warn().Err(err).Msg("closing task connection")
		}
	}()

	ctx = r.log.With().Str("task_id", h.ID.String()).Logger().WithContext(ctx)
	return task.Run(ctx, db, func(p Progress) {
		r.notify(h.progress(p))
	})
}

func (r *Runner) notify(ev Event) {
	for _, l := range r.listeners {
		r.deliver(l, ev)
	}
}

// deliver shields the task from a misbehaving listener.
func (r *Runner) deliver(l Listener, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Str("task_id", ev.TaskID.String()).Str("event", string(ev.Type)).Msg("task listener panicked")
		}
	}()
	l(ev)
}

// Handle tracks one submitted task.
type Handle struct {
	ID   uuid.UUID
	Kind Kind
	Path string

	mu         sync.Mutex
	changed    *sync.Cond
	state      State
	last       Progress
	result     *Result
	events     []Event
	startedAt  time.Time
	finishedAt time.Time
	done       chan struct{}
}

// Status is a point-in-time copy of a Handle.
type Status struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Path       string    `json:"path"`
	State      State     `json:"state"`
	Progress   Progress  `json:"progress"`
	Result     *Result   `json:"result,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Duration is the run time so far, or the total once finished.
func (s Status) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func newHandle(task Task) *Handle {
	h := &Handle{
		ID:    uuid.New(),
		Kind:  task.Kind(),
		Path:  task.Path(),
		state: StateIdle,
		done:  make(chan struct{}),
	}
	h.changed = sync.NewCond(&h.mu)
	return h
}

func (h *Handle) start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = StateRunning
	h.startedAt = time.Now()
	h.changed.Broadcast()
}

func (h *Handle) progress(p Progress) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = p
	ev := Event{TaskID: h.ID, Kind: h.Kind, Type: EventProgress, Progress: p}
	h.events = append(h.events, ev)
	h.changed.Broadcast()
	return ev
}

func (h *Handle) finish(result Result) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = StateFailed
	if result.Success {
		h.state = StateSucceeded
	}
	h.result = &result
	h.finishedAt = time.Now()
	ev := Event{TaskID: h.ID, Kind: h.Kind, Type: EventFinished, Progress: h.last, Result: &result}
	h.events = append(h.events, ev)
	h.changed.Broadcast()
	return ev
}

// Snapshot returns the current state of the task.
func (h *Handle) Snapshot() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Status{
		ID:         h.ID,
		Kind:       h.Kind,
		Path:       h.Path,
		State:      h.state,
		Progress:   h.last,
		StartedAt:  h.startedAt,
		FinishedAt: h.finishedAt,
	}
	if h.result != nil {
		res := *h.result
		s.Result = &res
	}
	return s
}

// Done is closed once the task has finished and the runner is free again.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task finishes or ctx ends.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return *h.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Subscribe replays every event emitted so far and then follows the task
// live. The channel is closed after the finished event; callers must drain it.
func (h *Handle) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		for i := 0; ; i++ {
			h.mu.Lock()
			for i >= len(h.events) && !h.state.Terminal() {
				h.changed.Wait()
			}
			if i >= len(h.events) {
				h.mu.Unlock()
				return
			}
			ev := h.events[i]
			h.mu.Unlock()
			ch <- ev
		}
	}()
	return ch
}
