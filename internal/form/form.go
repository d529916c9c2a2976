package form

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"clientregistry/internal/cep"
	"clientregistry/internal/registry/metrics"
	"clientregistry/internal/registry/models"
	"clientregistry/internal/registry/validation"
	dErrors "clientregistry/pkg/domainerrors"
)

// Directory is the slice of the directory service the form consumes on
// submit.
type Directory interface {
	Create(ctx context.Context, draft models.Draft) (models.Client, error)
	Update(ctx context.Context, id models.ClientID, draft models.Draft) (models.Client, error)
}

// Session is one open editing session over a draft: a new client when
// unseeded, an edit of an existing record after Seed. The draft is not
// persisted until validated and submitted; closing the session discards
// it along with any in-flight reconciliation.
type Session struct {
	ID uuid.UUID

	lookup    cep.Lookup
	directory Directory
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu         sync.Mutex
	draft      models.Draft
	fieldErrs  map[validation.Field]string
	editing    *models.ClientID
	state      State
	seq        uint64
	submitting bool
	closed     bool
	cancel     context.CancelFunc
}

type Option func(s *Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession opens an empty create session.
func NewSession(lookup cep.Lookup, directory Directory, opts ...Option) *Session {
	s := &Session{
		ID:        uuid.New(),
		lookup:    lookup,
		directory: directory,
		logger:    slog.Default(),
		fieldErrs: make(map[validation.Field]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.ID)
	return s
}

// Seed resets the session onto a copy of an existing record (edit mode).
func (s *Session) Seed(c models.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	id := c.ID
	s.editing = &id
	s.draft = models.DraftOf(c)
}

// Reset discards the draft and errors and returns to an empty create
// session. Any in-flight reconciliation outcome is discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.abortLookupLocked()
	s.draft = models.Draft{}
	s.fieldErrs = make(map[validation.Field]string)
	s.editing = nil
	s.state = StateIdle
	s.closed = false
	s.submitting = false
}

// Close tears the session down. A late-arriving lookup response must not
// mutate a draft that no longer exists.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLookupLocked()
	s.closed = true
	s.state = StateIdle
}

// abortLookupLocked cancels the in-flight lookup, if any, and bumps the
// sequence so its result is discarded even if it already completed.
func (s *Session) abortLookupLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

// SetField records a user edit. The field's validation error is cleared
// as soon as the field changes; it reappears only on the next submit.
func (s *Session) SetField(f validation.Field, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	switch f {
	case validation.FieldName:
		s.draft.Name = v
	case validation.FieldEmail:
		s.draft.Email = v
	case validation.FieldTelephone:
		s.draft.Telephone = v
	case validation.FieldCNPJ:
		s.draft.CNPJ = v
	case validation.FieldCEP:
		s.draft.CEP = v
	case validation.FieldAddress:
		s.draft.Address = v
	case validation.FieldCity:
		s.draft.City = v
	}
	delete(s.fieldErrs, f)
}

// Draft returns a copy of the working draft.
func (s *Session) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// FieldErrors returns a copy of the per-field error map from the last
// submit attempt.
func (s *Session) FieldErrors() map[validation.Field]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[validation.Field]string, len(s.fieldErrs))
	for f, msg := range s.fieldErrs {
		out[f] = msg
	}
	return out
}

// State reports the reconciler state for this session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit validates the draft and persists it through the directory.
// Validation failures populate the field errors and never reach the
// store. A successful submit closes the session.
func (s *Session) Submit(ctx context.Context) (models.Client, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Client{}, dErrors.New(dErrors.CodeInternal, "session is closed")
	}
	if s.submitting {
		s.mu.Unlock()
		return models.Client{}, dErrors.New(dErrors.CodeConflict, "submission already in progress")
	}

	res := validation.ValidateForm(s.draft)
	if !res.Valid {
		s.fieldErrs = res.Errors
		s.mu.Unlock()
		return models.Client{}, dErrors.NewValidation(res.ErrorStrings())
	}

	s.submitting = true
	draft := s.draft
	editing := s.editing
	s.mu.Unlock()

	var record models.Client
	var err error
	if editing != nil {
		record, err = s.directory.Update(ctx, *editing, draft)
	} else {
		record, err = s.directory.Create(ctx, draft)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		if fields := dErrors.FieldsOf(err); fields != nil {
			for f, msg := range fields {
				s.fieldErrs[validation.Field(f)] = msg
			}
		}
		return models.Client{}, err
	}

	s.logger.Info("draft submitted", "client", record.ID)
	s.abortLookupLocked()
	s.closed = true
	s.state = StateIdle
	return record, nil
}
