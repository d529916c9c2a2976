package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clientregistry/internal/registry/metrics"
	"clientregistry/internal/registry/models"
	"clientregistry/internal/registry/validation"
	dErrors "clientregistry/pkg/domainerrors"
	"clientregistry/pkg/sentinel"
)

// Store is the slice of the persistence contract the directory consumes.
type Store interface {
	List(ctx context.Context, search string) ([]models.Client, error)
	Get(ctx context.Context, id models.ClientID) (models.Client, error)
	Create(ctx context.Context, draft models.Draft) (models.Client, error)
	Update(ctx context.Context, id models.ClientID, draft models.Draft) (models.Client, error)
	Delete(ctx context.Context, id models.ClientID) error
}

// Directory owns the authoritative in-memory view of the client list.
// Rather than optimistically patching the list, every successful mutation
// re-derives it from the store filtered by the search term that was
// current when the mutation started, so the view never reflects stale
// data relative to the last completed mutation.
//
// One mutation is in flight at a time; the operation owns the state for
// its whole duration.
type Directory struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	opMu sync.Mutex // serializes operations end to end

	mu      sync.RWMutex // guards the observable state below
	records []models.Client
	search  string
	busy    bool
	lastErr string
}

type Option func(d *Directory)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Directory) {
		d.metrics = m
	}
}

func New(store Store, opts ...Option) *Directory {
	d := &Directory{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// begin marks an operation as started: the busy flag goes up and the
// previous operation's error is cleared immediately.
func (d *Directory) begin() {
	d.mu.Lock()
	d.busy = true
	d.lastErr = ""
	d.mu.Unlock()
}

func (d *Directory) end(err error) {
	d.mu.Lock()
	d.busy = false
	if err != nil {
		d.lastErr = err.Error()
	}
	d.mu.Unlock()
}

// List fetches records matching search, replaces the directory view and
// remembers the term for subsequent refreshes.
func (d *Directory) List(ctx context.Context, search string) ([]models.Client, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	d.begin()
	records, err := d.refresh(ctx, search)
	d.end(err)
	return records, err
}

// refresh performs the fetch and state replacement shared by List and the
// post-mutation re-list. Callers hold opMu.
func (d *Directory) refresh(ctx context.Context, search string) ([]models.Client, error) {
	start := time.Now()
	records, err := d.store.List(ctx, search)
	if d.metrics != nil {
		d.metrics.ObserveList(start)
	}
	if err != nil {
		d.logger.Error("list clients failed", "search", search, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeFetch, "failed to load clients")
	}

	d.mu.Lock()
	d.records = records
	d.search = search
	d.mu.Unlock()
	return records, nil
}

// Create validates the draft, persists it and refreshes the list before
// reporting success. Validation failures never reach the store.
func (d *Directory) Create(ctx context.Context, draft models.Draft) (models.Client, error) {
	if res := validation.ValidateForm(draft); !res.Valid {
		return models.Client{}, dErrors.NewValidation(res.ErrorStrings())
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()
	search := d.currentSearch()

	d.begin()
	record, err := d.store.Create(ctx, draft)
	if err != nil {
		err = translateStore(err, "failed to create client")
		d.end(err)
		return models.Client{}, err
	}
	if d.metrics != nil {
		d.metrics.ClientsCreated.Inc()
	}
	d.logger.Info("client created", "id", record.ID)

	refreshErr := d.relist(ctx, search)
	d.end(refreshErr)
	return record, nil
}

// Update follows the same validation gate and refresh policy as Create.
func (d *Directory) Update(ctx context.Context, id models.ClientID, draft models.Draft) (models.Client, error) {
	if res := validation.ValidateForm(draft); !res.Valid {
		return models.Client{}, dErrors.NewValidation(res.ErrorStrings())
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()
	search := d.currentSearch()

	d.begin()
	record, err := d.store.Update(ctx, id, draft)
	if err != nil {
		err = translateStore(err, "failed to update client")
		d.end(err)
		return models.Client{}, err
	}
	if d.metrics != nil {
		d.metrics.ClientsUpdated.Inc()
	}
	d.logger.Info("client updated", "id", record.ID)

	refreshErr := d.relist(ctx, search)
	d.end(refreshErr)
	return record, nil
}

// Delete removes the record and refreshes the list before returning.
func (d *Directory) Delete(ctx context.Context, id models.ClientID) error {
	d.opMu.Lock()
	defer d.opMu.Unlock()
	search := d.currentSearch()

	d.begin()
	if err := d.store.Delete(ctx, id); err != nil {
		err = translateStore(err, "failed to delete client")
		d.end(err)
		return err
	}
	if d.metrics != nil {
		d.metrics.ClientsDeleted.Inc()
	}
	d.logger.Info("client deleted", "id", id)

	refreshErr := d.relist(ctx, search)
	d.end(refreshErr)
	return nil
}

// Get reads a single record straight from the store; it does not touch
// the directory view.
func (d *Directory) Get(ctx context.Context, id models.ClientID) (models.Client, error) {
	record, err := d.store.Get(ctx, id)
	if err != nil {
		return models.Client{}, translateStore(err, "failed to load client")
	}
	return record, nil
}

// relist runs the mandatory post-mutation refresh. The mutation already
// succeeded, so a refresh failure is retained as the directory error but
// does not undo the caller's success.
func (d *Directory) relist(ctx context.Context, search string) error {
	if _, err := d.refresh(ctx, search); err != nil {
		d.logger.Warn("post-mutation refresh failed", "search", search, "error", err)
		return err
	}
	return nil
}

func (d *Directory) currentSearch() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.search
}

// Records returns a copy of the current view.
func (d *Directory) Records() []models.Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Client(nil), d.records...)
}

func (d *Directory) SearchTerm() string {
	return d.currentSearch()
}

func (d *Directory) Busy() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.busy
}

// LastError is the retained error of the most recent operation, empty
// when it succeeded or none ran since the last success.
func (d *Directory) LastError() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

func translateStore(err error, message string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "client not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "email or cnpj already registered")
	default:
		return dErrors.Wrap(err, dErrors.CodePersist, message)
	}
}
