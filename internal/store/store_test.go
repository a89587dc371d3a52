package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasplanners/internal/config"
	"fasplanners/internal/database"
	"fasplanners/internal/domain"
	"fasplanners/pkg/eventapi"
	apperrors "fasplanners/pkg/errors"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	conn, err := database.Open(config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGormStore(conn)
}

func strPtr(s string) *string { return &s }

func newRequest(code string, status domain.Status, createdAt time.Time) *domain.EventRequest {
	return &domain.EventRequest{
		TrackingCode: code,
		Name:         "Amina",
		Email:        "amina@example.com",
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestInsertAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	date := time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)
	guests := 120
	req := &domain.EventRequest{
		TrackingCode:  "EVT-ABC234",
		Name:          "Amina",
		Email:         "amina@example.com",
		EventCategory: strPtr("social"),
		EventDate:     &date,
		GuestCount:    &guests,
	}
	req.SetSections(eventapi.MenuSections{
		"appetizers": {"Samosa"},
		"grill":      {},
	}.Complete())
	req.SetColors([]string{"#D4AF37", "#FFFFFF"})
	req.SetImages([]eventapi.InspirationImage{
		{Name: "arch.png", Type: "image/png", Data: "data:image/png;base64,AAAA"},
	})
	require.NoError(t, s.Insert(ctx, req))
	require.NotZero(t, req.ID)
	assert.Equal(t, domain.StatusNew, req.Status)
	assert.False(t, req.CreatedAt.IsZero())

	got, err := s.GetByTrackingCode(ctx, "EVT-ABC234")
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, "social", *got.EventCategory)
	assert.Nil(t, got.Phone)
	assert.Nil(t, got.Venue)
	require.NotNil(t, got.EventDate)
	assert.True(t, date.Equal(got.EventDate.UTC()))
	assert.Equal(t, 120, *got.GuestCount)
	assert.Equal(t, []string{"Samosa"}, got.Sections()["appetizers"])
	assert.Equal(t, []string{}, got.Sections()["desserts"])
	assert.Len(t, got.Sections(), len(eventapi.MenuSectionNames))
	assert.Equal(t, []string{"#D4AF37", "#FFFFFF"}, got.Colors())
	require.Len(t, got.Images(), 1)
	assert.Equal(t, "arch.png", got.Images()[0].Name)

	byID, err := s.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, got.TrackingCode, byID.TrackingCode)
}

func TestInsertMinimalKeepsOptionalFieldsNull(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	req := &domain.EventRequest{TrackingCode: "EVT-MNP345", Name: "Juma", Email: "juma@example.com"}
	require.NoError(t, s.Insert(ctx, req))

	got, err := s.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EventDate)
	assert.Nil(t, got.GuestCount)
	assert.Nil(t, got.Message)
	assert.Nil(t, got.Sections())
	assert.Nil(t, got.Colors())
	assert.Nil(t, got.Images())
	assert.Equal(t, domain.StatusNew, got.Status)

	var nulls int64
	require.NoError(t, s.db.Model(&domain.EventRequest{}).
		Where("menu_sections IS NULL AND decor_colors IS NULL AND inspiration_images IS NULL").
		Count(&nulls).Error)
	assert.EqualValues(t, 1, nulls)
}

func TestInsertRejectsUnknownStatus(t *testing.T) {
	s := newTestStore(t)

	err := s.Insert(context.Background(), newRequest("EVT-BAD234", "archived", time.Now()))
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid status")
}

func TestInsertDuplicateTrackingCode(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Insert(ctx, newRequest("EVT-DUP234", "", time.Now())))

	err := s.Insert(ctx, newRequest("EVT-DUP234", "", time.Now()))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Insert(ctx, newRequest("EVT-AAAAA2", domain.StatusConverted, base)))
	require.NoError(t, s.Insert(ctx, newRequest("EVT-BBBBB2", domain.StatusNew, base.Add(time.Hour))))
	require.NoError(t, s.Insert(ctx, newRequest("EVT-CCCCC2", domain.StatusConverted, base.Add(2*time.Hour))))
	require.NoError(t, s.Insert(ctx, newRequest("EVT-DDDDD2", domain.StatusRejected, base.Add(3*time.Hour))))

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "EVT-DDDDD2", all[0].TrackingCode)
	assert.Equal(t, "EVT-AAAAA2", all[3].TrackingCode)

	converted := domain.StatusConverted
	filtered, err := s.List(ctx, ListFilter{Status: &converted})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "EVT-CCCCC2", filtered[0].TrackingCode)
	assert.Equal(t, "EVT-AAAAA2", filtered[1].TrackingCode)
	for _, r := range filtered {
		assert.Equal(t, domain.StatusConverted, r.Status)
	}

	inReview := domain.StatusInReview
	empty, err := s.List(ctx, ListFilter{Status: &inReview})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	limited, err := s.List(ctx, ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLookupMisses(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetByID(ctx, 99)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.GetByTrackingCode(ctx, "EVT-ZZZZZZ")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.UpdateStatus(ctx, 99, domain.StatusInReview)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.UpdateNotes(ctx, 99, strPtr("call back"))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateStatusAndNotes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	req := newRequest("EVT-UPD234", "", time.Now().UTC().Add(-time.Hour))
	require.NoError(t, s.Insert(ctx, req))
	created := req.UpdatedAt

	updated, err := s.UpdateStatus(ctx, req.ID, domain.StatusConverted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(created))

	// Any status may replace any other.
	updated, err = s.UpdateStatus(ctx, req.ID, domain.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, updated.Status)

	_, err = s.UpdateStatus(ctx, req.ID, "archived")
	assert.True(t, apperrors.IsValidation(err))

	updated, err = s.UpdateNotes(ctx, req.ID, strPtr("Prefers a garden venue"))
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Prefers a garden venue", *updated.Notes)
	assert.Equal(t, domain.StatusNew, updated.Status)

	updated, err = s.UpdateNotes(ctx, req.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Notes)
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, len(domain.AllStatuses))

	now := time.Now()
	require.NoError(t, s.Insert(ctx, newRequest("EVT-CNT234", domain.StatusNew, now)))
	require.NoError(t, s.Insert(ctx, newRequest("EVT-CNT235", domain.StatusNew, now)))
	require.NoError(t, s.Insert(ctx, newRequest("EVT-CNT236", domain.StatusRejected, now)))

	counts, err = s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusNew])
	assert.Equal(t, int64(1), counts[domain.StatusRejected])
	assert.Equal(t, int64(0), counts[domain.StatusConverted])
}
