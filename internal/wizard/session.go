package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a submission, payload encoding included
const DefaultTimeout = 20 * time.Second

var (
	// ErrSubmitInFlight is returned when Submit is called while a submission is running
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrClosed is returned once the session was submitted or discarded
	ErrClosed = errors.New("wizard session is closed")
	// ErrDiscarded is returned by a submission whose session was discarded while it ran
	ErrDiscarded = errors.New("wizard session was discarded")
)

// Session drives one wizard for one user. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	state     State
	submitter Submitter
	timeout   time.Duration

	cancel context.CancelFunc
	run    uint64
}

// Option configures a Session
type Option func(*Session)

// WithTimeout sets the submission timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSession opens a wizard on its first step with an empty draft
func NewSession(submitter Submitter, opts ...Option) *Session {
	s := &Session{state: Start(), submitter: submitter, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a to the session and returns the new state
func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// Next advances one step, or explains why the current step is incomplete
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhaseEditing {
		return s.closedErr()
	}
	if err := Validate(s.state.Step, s.state.Draft); err != nil {
		return err
	}
	s.state = Reduce(s.state, Next{})
	return nil
}

// Back returns to the previous step
func (s *Session) Back() State {
	return s.Dispatch(Back{})
}

// Submit sends the draft from the review step. On failure the draft is kept,
// the error message is stored in the state and Submit may be called again.
func (s *Session) Submit(ctx context.Context) (*Receipt, error) {
	s.mu.Lock()
	if s.state.Phase != PhaseEditing {
		err := s.closedErr()
		s.mu.Unlock()
		return nil, err
	}
	if s.state.Step != LastStep {
		s.mu.Unlock()
		return nil, &IncompleteError{Step: s.state.Step, Fields: []string{"step"}}
	}
	if err := ValidateAll(s.state.Draft); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.state = Reduce(s.state, SubmitStarted{})
	draft := s.state.Draft
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	s.run++
	run := s.run
	s.mu.Unlock()
	defer cancel()

	receipt, err := s.send(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run || s.state.Phase != PhaseSubmitting {
		if err == nil {
			log.Warn().Str("component", "wizard").Str("tracking_code", receipt.TrackingCode).Msg("Submission finished after discard")
		}
		return nil, ErrDiscarded
	}
	s.cancel = nil

	if err != nil {
		log.Debug().Str("component", "wizard").Err(err).Msg("Submission failed")
		s.state = Reduce(s.state, SubmitFailed{Message: Message(err)})
		return nil, err
	}
	s.state = Reduce(s.state, SubmitSucceeded{TrackingCode: receipt.TrackingCode})
	return receipt, nil
}

func (s *Session) send(ctx context.Context, d Draft) (*Receipt, error) {
	payload, err := BuildPayload(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &NetworkError{Err: err}
		}
		return nil, err
	}
	return s.submitter.Submit(ctx, payload)
}

// Discard closes the wizard, dropping the draft and aborting a running submission
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = Reduce(s.state, Discard{})
}

func (s *Session) closedErr() error {
	if s.state.Phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	return ErrClosed
}
