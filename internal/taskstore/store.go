package taskstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/locvowork/taskflow/internal/apiclient"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/logger"
	"github.com/locvowork/taskflow/pkg/pipeline"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this task?"

var ErrClosed = errors.New("task store closed")

var errNoRecord = errors.New("malformed response: no task record")

// API is the part of the API client the store needs.
type API interface {
	ListTasks(ctx context.Context, token string) ([]domain.Task, error)
	CreateTask(ctx context.Context, token string, draft domain.Draft) (*domain.Task, error)
	UpdateTask(ctx context.Context, token string, id domain.FlexID, patch domain.Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, token string, id domain.FlexID) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Store holds the signed-in user's tasks and keeps them in line with
// server-confirmed mutations. Operations touching the collection run one at a
// time in the order they were issued; reads never wait for them.
type Store struct {
	api   API
	token string

	queue *pipeline.ActionBlock

	mu      sync.RWMutex
	tasks   []domain.Task
	state   State
	lastErr error
	closed  bool
	// gen changes on Reset; responses to requests begun earlier are dropped.
	gen uint64
	// inflight is the operation between begin and commit/fail.
	inflight *op
}

type job struct {
	ctx  context.Context
	op   string
	fn   func(ctx context.Context) error
	done chan error
}

// New returns an empty store authorized by cred.
func New(api API, cred *domain.Credential) *Store {
	s := &Store{
		api:   api,
		token: cred.Token,
		tasks: []domain.Task{},
	}
	s.queue = pipeline.NewActionBlock(func(msg interface{}) error {
		j := msg.(*job)
		j.done <- s.run(j)
		return nil
	}, pipeline.WithName("taskstore"))
	return s
}

// run executes j. A panic fails the operation instead of leaving its caller
// waiting.
func (s *Store) run(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = s.abort(j.ctx, j.op, fmt.Errorf("panic: %v", r))
		}
	}()
	return j.fn(j.ctx)
}

func (s *Store) abort(ctx context.Context, opName string, cause error) error {
	logger.ErrorLog(ctx, fmt.Sprintf("%s aborted: %v", opName, cause))
	err := &domain.FetchError{Op: opName, Err: &domain.NetworkError{Err: cause}}

	s.mu.RLock()
	o := s.inflight
	s.mu.RUnlock()
	if o == nil {
		return err
	}
	return s.fail(*o, err)
}

// Reset discards the collection. The store stays usable.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) reset() {
	s.tasks = []domain.Task{}
	s.state = StateEmpty
	s.lastErr = nil
	s.gen++
}

// Close discards the collection and stops accepting operations.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.reset()
	s.mu.Unlock()

	s.queue.Complete()
	_ = s.queue.Wait()
}

func (s *Store) exec(ctx context.Context, opName string, fn func(ctx context.Context) error) error {
	j := &job{ctx: ctx, op: opName, fn: fn, done: make(chan error, 1)}
	if err := s.queue.Send(ctx, j); err != nil {
		if errors.Is(err, pipeline.ErrBlockCompleted) {
			return ErrClosed
		}
		return fetchError(ctx, opName, err)
	}
	return <-j.done
}

// op is one in-flight operation: the state to fall back to and the
// generation it started in.
type op struct {
	prev State
	gen  uint64
}

// begin moves to next.
func (s *Store) begin(next State) (op, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return op{}, ErrClosed
	}
	o := op{prev: s.state, gen: s.gen}
	s.state = next
	s.inflight = &o
	return o, nil
}

func (s *Store) fail(o op, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight = nil
	if s.gen == o.gen {
		s.state = o.prev
		s.lastErr = err
	}
	return err
}

// commit applies mutate under the write lock unless the store was reset or
// closed while the request was in flight.
func (s *Store) commit(o op, mutate func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != o.gen {
		s.inflight = nil
		return false
	}
	mutate()
	s.inflight = nil
	s.state = StateReady
	s.lastErr = nil
	return true
}

// LoadAll replaces the collection with the server's list. On failure the
// previous collection is kept.
func (s *Store) LoadAll(ctx context.Context) error {
	return s.exec(ctx, "fetch todos", func(ctx context.Context) error {
		o, err := s.begin(StateLoading)
		if err != nil {
			return err
		}
		tasks, err := s.api.ListTasks(ctx, s.token)
		if err != nil {
			return s.fail(o, fetchError(ctx, "fetch todos", err))
		}
		s.commit(o, func() { s.tasks = tasks })
		logger.InfoLog(ctx, fmt.Sprintf("loaded %d tasks", len(tasks)))
		return nil
	})
}

// Add creates a task and puts the server's record first. An empty title is
// rejected before any request.
func (s *Store) Add(ctx context.Context, draft domain.Draft) (*domain.Task, error) {
	draft = draft.Normalize()
	if draft.Title == "" {
		return nil, domain.NewValidationError(domain.ReasonEmptyTitle)
	}
	if !draft.Priority.Valid() {
		return nil, domain.NewValidationError(domain.ReasonBadPriority)
	}

	var created *domain.Task
	err := s.exec(ctx, "add todo", func(ctx context.Context) error {
		o, err := s.begin(StateBusy)
		if err != nil {
			return err
		}
		task, err := s.api.CreateTask(ctx, s.token, draft)
		if err == nil && task == nil {
			err = errNoRecord
		}
		if err != nil {
			return s.fail(o, fetchError(ctx, "add todo", err))
		}
		s.commit(o, func() {
			s.tasks = append([]domain.Task{*task}, s.tasks...)
		})
		created = task
		return nil
	})
	return created, err
}

// Update sends patch and replaces the local task, in place, with the server's
// record. A task unknown locally is still sent; the response is then dropped.
func (s *Store) Update(ctx context.Context, id domain.FlexID, patch domain.Patch) (*domain.Task, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}
	var updated *domain.Task
	err = s.exec(ctx, "update todo", func(ctx context.Context) error {
		var err error
		updated, err = s.update(ctx, id, patch)
		return err
	})
	return updated, err
}

// ToggleCompleted flips the completed flag of a locally known task.
func (s *Store) ToggleCompleted(ctx context.Context, id domain.FlexID) (*domain.Task, error) {
	var updated *domain.Task
	err := s.exec(ctx, "update todo", func(ctx context.Context) error {
		current, ok := s.Find(id)
		if !ok {
			return fmt.Errorf("toggle task %s: %w", id, domain.ErrTaskNotFound)
		}
		completed := !bool(current.Completed)
		var err error
		updated, err = s.update(ctx, id, domain.Patch{Completed: &completed})
		return err
	})
	return updated, err
}

func (s *Store) update(ctx context.Context, id domain.FlexID, patch domain.Patch) (*domain.Task, error) {
	o, err := s.begin(StateBusy)
	if err != nil {
		return nil, err
	}
	task, err := s.api.UpdateTask(ctx, s.token, id, patch)
	if err == nil && task == nil {
		err = errNoRecord
	}
	if err != nil {
		return nil, s.fail(o, fetchError(ctx, "update todo", err))
	}
	merged := false
	s.commit(o, func() {
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				s.tasks[i] = *task
				merged = true
				return
			}
		}
	})
	if !merged {
		logger.WarnLog(ctx, fmt.Sprintf("updated task %s is not in the local collection", id))
	}
	return task, nil
}

// Delete asks confirm first; a "no" is a no-op returning (false, nil). The
// task is removed locally only after the server confirms.
func (s *Store) Delete(ctx context.Context, id domain.FlexID, confirm Confirmer) (bool, error) {
	if confirm == nil {
		return false, errors.New("delete requires a confirmer")
	}
	ok, err := confirm.Confirm(DeletePrompt)
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return false, nil
	}

	err = s.exec(ctx, "delete todo", func(ctx context.Context) error {
		o, err := s.begin(StateBusy)
		if err != nil {
			return err
		}
		if err := s.api.DeleteTask(ctx, s.token, id); err != nil {
			return s.fail(o, fetchError(ctx, "delete todo", err))
		}
		s.commit(o, func() {
			kept := make([]domain.Task, 0, len(s.tasks))
			for _, t := range s.tasks {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			s.tasks = kept
		})
		return nil
	})
	return err == nil, err
}

// Filter returns the tasks matching f in collection order.
func (s *Store) Filter(f domain.Filter) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Tasks returns a copy of the whole collection.
func (s *Store) Tasks() []domain.Task {
	return s.Filter(domain.FilterAll)
}

// Find looks a task up by id.
func (s *Store) Find(id domain.FlexID) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := domain.Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
	}
	return st
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastError is the failure of the most recent operation, nil after a success.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func normalizePatch(p domain.Patch) (domain.Patch, error) {
	if p.Empty() {
		return p, domain.NewValidationError(domain.ReasonEmptyPatch)
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, domain.NewValidationError(domain.ReasonEmptyTitle)
		}
		p.Title = &title
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return p, domain.NewValidationError(domain.ReasonBadPriority)
	}
	return p, nil
}

func fetchError(ctx context.Context, op string, err error) error {
	logger.WarnLog(ctx, fmt.Sprintf("%s failed: %v", op, err))
	if msg, ok := apiclient.IsLogical(err); ok {
		return &domain.FetchError{Op: op, Message: msg}
	}
	return &domain.FetchError{Op: op, Err: &domain.NetworkError{Err: err}}
}
