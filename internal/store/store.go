package store

import (
	"context"
	"errors"

	apperrors "filevault/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPageSize applies when a caller does not pick an explicit page size.
const DefaultPageSize = 25

// Scope narrows or extends a query. Each resource service supplies its own
// scopes (filter, preload, ordering) instead of subclassing the store.
type Scope func(*gorm.DB) *gorm.DB

// Page addresses a result window. Number is 1-based at every API boundary;
// the store converts to a zero-based offset internally ((Number-1) * Size).
// A Number below 1 is treated as the first page, a Size below 1 falls back
// to DefaultPageSize.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// Result is one page of entities plus the total count over the same filter.
type Result[T any] struct {
	Results []T   `json:"results"`
	Count   int64 `json:"count"`
}

// Store provides CRUD, pagination and soft delete for one entity type.
// Persistence failures surface unchanged; domain translation happens in the
// services layer.
type Store[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

func (s *Store[T]) scoped(ctx context.Context, scopes []Scope) *gorm.DB {
	q := s.db.WithContext(ctx)
	for _, scope := range scopes {
		q = scope(q)
	}
	return q
}

// FindOne returns the first live entity matching the scopes, or nil when
// nothing matches. Absence is not an error; the caller decides whether it is.
func (s *Store[T]) FindOne(ctx context.Context, scopes ...Scope) (*T, error) {
	var entity T
	err := s.scoped(ctx, scopes).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindOneUnscoped is FindOne without the soft-delete filter. Soft-deleted
// rows stay addressable by id for audit through this path only.
func (s *Store[T]) FindOneUnscoped(ctx context.Context, scopes ...Scope) (*T, error) {
	var entity T
	err := s.scoped(ctx, scopes).Unscoped().First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Save persists the entity, assigning identity and audit fields on first
// save and refreshing LastModifiedAt on subsequent ones.
func (s *Store[T]) Save(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).Save(entity).Error
}

// SaveAll persists every element with the same semantics as Save.
func (s *Store[T]) SaveAll(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Save(entities).Error
}

// FindAndCount returns one page of matching entities together with the total
// count over the same filter, independent of the page window.
func (s *Store[T]) FindAndCount(ctx context.Context, page Page, scopes ...Scope) ([]T, int64, error) {
	page = page.normalize()

	q := s.scoped(ctx, scopes).Model(new(T))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []T
	if err := q.Offset(page.offset()).Limit(page.Size).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// List is FindAndCount packaged as a single result.
func (s *Store[T]) List(ctx context.Context, page Page, scopes ...Scope) (Result[T], error) {
	results, count, err := s.FindAndCount(ctx, page, scopes...)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Results: results, Count: count}, nil
}

// SoftDelete stamps DeletedAt on every live entity matching the scopes. Rows
// are never erased; deleting an already-deleted entity is a no-op.
func (s *Store[T]) SoftDelete(ctx context.Context, scopes ...Scope) error {
	return s.scoped(ctx, scopes).Delete(new(T)).Error
}

// Update applies the partial patch to the entity with the given id, then
// re-reads and returns the refreshed entity. Fails with NotFound when the id
// does not resolve to a live entity after the update attempt.
func (s *Store[T]) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*T, error) {
	if len(patch) > 0 {
		err := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(patch).Error
		if err != nil {
			return nil, err
		}
	}

	entity, err := s.FindOne(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperrors.NotFound("entity not found")
	}
	return entity, nil
}

// FindByIDs returns the live entities whose id is in ids. Unmatched and
// soft-deleted ids are silently omitted; callers needing exactness must
// compare lengths.
func (s *Store[T]) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	results := []T{}
	if len(ids) == 0 {
		return results, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
