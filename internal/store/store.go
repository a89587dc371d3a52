// Package store persists event requests.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fasplanners/internal/domain"
	"fasplanners/internal/metrics"
	apperrors "fasplanners/pkg/errors"
)

// ListFilter narrows a List call. A nil Status lists every request.
type ListFilter struct {
	Status *domain.Status
	Limit  int
}

// EventRequestStore is the persistence contract for event requests
type EventRequestStore interface {
	Insert(ctx context.Context, req *domain.EventRequest) error
	List(ctx context.Context, filter ListFilter) ([]domain.EventRequest, error)
	GetByID(ctx context.Context, id uint) (*domain.EventRequest, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.EventRequest, error)
	UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.EventRequest, error)
	UpdateNotes(ctx context.Context, id uint, notes *string) (*domain.EventRequest, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
}

// GormStore implements EventRequestStore on gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Insert creates req in a single statement. A duplicate tracking code returns
// a CONFLICT error and leaves no row behind.
func (s *GormStore) Insert(ctx context.Context, req *domain.EventRequest) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Create(req).Error
	metrics.RecordDBQuery("event_request_insert", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrCodeConflict, "tracking code already exists", err)
		}
		return apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to save event request", err)
	}
	return nil
}

// List returns requests newest first
func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]domain.EventRequest, error) {
	start := time.Now()
	query := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	requests := []domain.EventRequest{}
	err := query.Find(&requests).Error
	metrics.RecordDBQuery("event_request_list", time.Since(start), err)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to fetch event requests", err)
	}
	return requests, nil
}

// GetByID returns the request with the given primary key
func (s *GormStore) GetByID(ctx context.Context, id uint) (*domain.EventRequest, error) {
	return s.first(ctx, "event_request_get", "id = ?", id)
}

// GetByTrackingCode returns the request with the given tracking code. The code
// is matched exactly; callers normalise it first.
func (s *GormStore) GetByTrackingCode(ctx context.Context, code string) (*domain.EventRequest, error) {
	return s.first(ctx, "event_request_track", "tracking_code = ?", code)
}

// UpdateStatus sets the status of a request and returns the updated row
func (s *GormStore) UpdateStatus(ctx context.Context, id uint, status domain.Status) (*domain.EventRequest, error) {
	if !status.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	return s.update(ctx, "event_request_update_status", id, "status", status)
}

// UpdateNotes replaces the admin notes of a request. Nil clears them.
func (s *GormStore) UpdateNotes(ctx context.Context, id uint, notes *string) (*domain.EventRequest, error) {
	return s.update(ctx, "event_request_update_notes", id, "notes", notes)
}

// CountByStatus returns the number of requests per status. Every known status
// is present in the result.
func (s *GormStore) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status domain.Status
		Count  int64
	}

	start := time.Now()
	err := s.db.WithContext(ctx).
		Model(&domain.EventRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	metrics.RecordDBQuery("event_request_count", time.Since(start), err)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to count event requests", err)
	}

	counts := make(map[domain.Status]int64, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (s *GormStore) first(ctx context.Context, operation, cond string, arg any) (*domain.EventRequest, error) {
	var req domain.EventRequest

	start := time.Now()
	err := s.db.WithContext(ctx).Where(cond, arg).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.RecordDBQuery(operation, time.Since(start), nil)
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "event request not found")
	}
	metrics.RecordDBQuery(operation, time.Since(start), err)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to fetch event request", err)
	}
	return &req, nil
}

func (s *GormStore) update(ctx context.Context, operation string, id uint, column string, value any) (*domain.EventRequest, error) {
	start := time.Now()
	result := s.db.WithContext(ctx).
		Model(&domain.EventRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{column: value, "updated_at": time.Now().UTC()})
	metrics.RecordDBQuery(operation, time.Since(start), result.Error)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to update event request", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "event request not found")
	}
	return s.GetByID(ctx, id)
}

// isUniqueViolation recognises unique constraint failures from gorm's error
// translation and from the raw sqlite and postgres driver messages.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
