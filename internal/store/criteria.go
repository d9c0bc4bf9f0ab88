package store

import (
	"fmt"
	"sync"

	"github.com/utafrali/sellerdesk/internal/domain"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

// Criteria holds the seller's current search, filter and sort choices. Every
// mutation returns the resulting value; readers get copies from Snapshot.
type Criteria struct {
	mu sync.RWMutex
	k  domain.FilterCriteria
}

// NewCriteria starts from the default criteria.
func NewCriteria() *Criteria {
	return &Criteria{k: domain.DefaultCriteria()}
}

// Snapshot returns the current criteria by value.
func (c *Criteria) Snapshot() domain.FilterCriteria {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

func (c *Criteria) update(fn func(k *domain.FilterCriteria)) domain.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.k)
	return c.k
}

// SetSearchTerm stores the term verbatim; matching is case-insensitive later.
func (c *Criteria) SetSearchTerm(term string) domain.FilterCriteria {
	return c.update(func(k *domain.FilterCriteria) { k.SearchTerm = term })
}

// SetCategory selects a category; "" selects all of them.
func (c *Criteria) SetCategory(category string) domain.FilterCriteria {
	if category == "" {
		category = domain.AllCategories
	}
	return c.update(func(k *domain.FilterCriteria) { k.Category = category })
}

// SetStatus selects a status filter. Unknown values are rejected and leave
// the criteria unchanged.
func (c *Criteria) SetStatus(s domain.StatusFilter) (domain.FilterCriteria, error) {
	if !s.IsValid() {
		return c.Snapshot(), apperrors.InvalidInput(fmt.Sprintf("unknown status %q", s))
	}
	return c.update(func(k *domain.FilterCriteria) { k.Status = s }), nil
}

// SetSort selects a sort order. Unknown values are rejected and leave the
// criteria unchanged.
func (c *Criteria) SetSort(key domain.SortKey) (domain.FilterCriteria, error) {
	if !key.IsValid() {
		return c.Snapshot(), apperrors.InvalidInput(fmt.Sprintf("unknown sort %q", key))
	}
	return c.update(func(k *domain.FilterCriteria) { k.Sort = key }), nil
}

// ClearFilters resets all four fields to their defaults in one step.
func (c *Criteria) ClearFilters() domain.FilterCriteria {
	return c.update(func(k *domain.FilterCriteria) { *k = domain.DefaultCriteria() })
}
