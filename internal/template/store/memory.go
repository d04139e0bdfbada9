package store

import (
	"context"
	"sort"
	"sync"

	"vouch/internal/template/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemory keeps templates in a map for tests and development runs.
type InMemory struct {
	mu        sync.RWMutex
	templates map[id.TemplateID]*models.Template
}

func NewInMemory() *InMemory {
	return &InMemory{templates: make(map[id.TemplateID]*models.Template)}
}

func (s *InMemory) Create(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[t.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := cloneTemplate(t)
	s.templates[t.ID] = cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, templateID id.TemplateID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneTemplate(t), nil
}

func (s *InMemory) Update(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.templates[t.ID] = cloneTemplate(t)
	return nil
}

// Delete removes a template. Existing credentials keep rendering from their
// attribute snapshot; only new issuance against this template is blocked.
func (s *InMemory) Delete(_ context.Context, templateID id.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[templateID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.templates, templateID)
	return nil
}

func (s *InMemory) ListByIssuer(_ context.Context, issuerID id.IssuerID) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Template
	for _, t := range s.templates {
		if t.IssuerID == issuerID {
			out = append(out, cloneTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneTemplate(t *models.Template) *models.Template {
	cp := *t
	cp.Fields = make([]models.Field, len(t.Fields))
	copy(cp.Fields, t.Fields)
	return &cp
}
