package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"clientregistry/internal/registry/models"
	"clientregistry/pkg/sentinel"
)

// InMemory keeps the registry in a map. It intentionally favors clarity
// over performance and backs both tests and Postgres-less deployments.
type InMemory struct {
	mu      sync.RWMutex
	clients map[models.ClientID]models.Client
	nextID  models.ClientID
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[models.ClientID]models.Client), nextID: 1}
}

// matches mirrors the registry search contract: case-insensitive substring
// on name and email, raw substring on cnpj and telephone.
func matches(c models.Client, search string) bool {
	if search == "" {
		return true
	}
	lower := strings.ToLower(search)
	return strings.Contains(strings.ToLower(c.Name), lower) ||
		strings.Contains(strings.ToLower(c.Email), lower) ||
		strings.Contains(c.CNPJ, search) ||
		strings.Contains(c.Telephone, search)
}

func (s *InMemory) List(_ context.Context, search string) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if matches(c, search) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Get(_ context.Context, id models.ClientID) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.clients[id]; ok {
		return c, nil
	}
	return models.Client{}, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, draft models.Draft) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(draft, 0) {
		return models.Client{}, sentinel.ErrConflict
	}

	c := models.Client{ID: s.nextID}
	draft.Apply(&c)
	s.clients[c.ID] = c
	s.nextID++
	return c, nil
}

func (s *InMemory) Update(_ context.Context, id models.ClientID, draft models.Draft) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return models.Client{}, sentinel.ErrNotFound
	}
	if s.taken(draft, id) {
		return models.Client{}, sentinel.ErrConflict
	}

	draft.Apply(&c)
	s.clients[id] = c
	return c, nil
}

func (s *InMemory) Delete(_ context.Context, id models.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

// taken enforces the unique email/cnpj constraints, ignoring the record
// being updated.
func (s *InMemory) taken(draft models.Draft, self models.ClientID) bool {
	for id, c := range s.clients {
		if id == self {
			continue
		}
		if strings.EqualFold(c.Email, draft.Email) || c.CNPJ == draft.CNPJ {
			return true
		}
	}
	return false
}
