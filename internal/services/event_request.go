package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"fasplanners/internal/config"
	"fasplanners/internal/domain"
	"fasplanners/internal/metrics"
	"fasplanners/internal/notify"
	"fasplanners/internal/storage"
	"fasplanners/internal/store"
	"fasplanners/internal/tracking"
	"fasplanners/pkg/eventapi"
	apperrors "fasplanners/pkg/errors"
)

const (
	msgSubmitted         = "Event request submitted successfully"
	msgNameEmailRequired = "Name and email are required"
	msgCodeRequired      = "Tracking code is required"
	msgEventNotFound     = "Event not found. Please check your tracking code."
	msgRequestNotFound   = "Event request not found"
	msgCodeExhausted     = "Could not allocate a unique tracking code. Please try again."
)

// AdminAuthorizer decides whether the caller in ctx may use the admin operations
type AdminAuthorizer interface {
	AuthorizeAdmin(ctx context.Context) error
}

// OpenAccess lets every caller use the admin operations
type OpenAccess struct{}

func (OpenAccess) AuthorizeAdmin(context.Context) error { return nil }

// Options configures an EventRequestService. Zero fields take defaults.
type Options struct {
	Codes      tracking.Generator
	Images     storage.ImageStore
	Notifier   notify.Notifier
	Authorizer AdminAuthorizer
	Limits     config.SubmissionConfig
}

// SubmitResult is returned by Submit
type SubmitResult struct {
	Request      *domain.EventRequest
	TrackingCode string
	Message      string
}

// TrackResult is returned by Track
type TrackResult struct {
	Request           *domain.EventRequest
	StatusLabel       string
	StatusDescription string
}

// EventRequestService implements submission, tracking and the admin review operations
type EventRequestService struct {
	store    store.EventRequestStore
	codes    tracking.Generator
	images   storage.ImageStore
	notifier notify.Notifier
	authz    AdminAuthorizer
	limits   config.SubmissionConfig

	deliveries *notifyQueue
}

// NewEventRequestService creates a new event request service
func NewEventRequestService(st store.EventRequestStore, opts Options) *EventRequestService {
	limits := opts.Limits
	if limits.TrackingCodeAttempts <= 0 {
		limits.TrackingCodeAttempts = 5
	}
	if limits.MaxImages <= 0 {
		limits.MaxImages = 5
	}
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = 10 << 20
	}
	if limits.NotifyTimeout <= 0 {
		limits.NotifyTimeout = 15 * time.Second
	}

	s := &EventRequestService{
		store:    st,
		codes:    opts.Codes,
		images:   opts.Images,
		notifier: opts.Notifier,
		authz:    opts.Authorizer,
		limits:   limits,

		deliveries: newNotifyQueue(),
	}
	if s.codes == nil {
		s.codes = tracking.NewGenerator()
	}
	if s.images == nil {
		s.images = storage.NewInlineStore(limits.MaxImageBytes)
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.authz == nil {
		s.authz = OpenAccess{}
	}
	return s
}

// Submit validates p, stores a new request with a fresh tracking code and
// notifies staff and the client in the background.
func (s *EventRequestService) Submit(ctx context.Context, p *eventapi.SubmitRequest) (*SubmitResult, error) {
	if p == nil {
		return nil, BadRequest(msgNameEmailRequired)
	}
	log.Info().
		Str("component", "event_request").
		Str("name", strings.TrimSpace(p.Name)).
		Str("email", strings.TrimSpace(p.Email)).
		Msg("Submit request")

	rec, err := s.buildRecord(p)
	if err != nil {
		log.Info().Str("component", "event_request").Err(err).Msg("Submit rejected")
		return nil, err
	}

	images, err := s.storeImages(ctx, p.InspirationImages)
	if err != nil {
		log.Warn().Str("component", "event_request").Err(err).Msg("Submit failed: inspiration images")
		return nil, fromAppError(err, msgRequestNotFound)
	}
	rec.SetImages(images)

	if err := s.insertWithFreshCode(ctx, rec); err != nil {
		s.discardImages(ctx, images)
		return nil, err
	}

	log.Info().
		Str("component", "event_request").
		Uint("id", rec.ID).
		Str("tracking_code", rec.TrackingCode).
		Msg("Submit successful")
	metrics.RecordSubmission(deref(rec.EventCategory))

	s.notifyAsync(ctx, "submitted", rec, s.notifier.RequestSubmitted)

	return &SubmitResult{
		Request:      rec,
		TrackingCode: rec.TrackingCode,
		Message:      msgSubmitted,
	}, nil
}

// insertWithFreshCode inserts rec, drawing a new tracking code whenever the
// previous one collides with an existing request.
func (s *EventRequestService) insertWithFreshCode(ctx context.Context, rec *domain.EventRequest) error {
	for attempt := 1; attempt <= s.limits.TrackingCodeAttempts; attempt++ {
		rec.ID = 0
		rec.TrackingCode = s.codes.Generate()

		err := s.store.Insert(ctx, rec)
		if err == nil {
			return nil
		}
		if !apperrors.IsConflict(err) {
			log.Error().Str("component", "event_request").Err(err).Msg("Submit failed: database error")
			return err
		}

		metrics.RecordTrackingCodeCollision()
		log.Warn().
			Str("component", "event_request").
			Str("tracking_code", rec.TrackingCode).
			Int("attempt", attempt).
			Msg("Tracking code collision, regenerating")
	}

	log.Error().
		Str("component", "event_request").
		Int("attempts", s.limits.TrackingCodeAttempts).
		Msg("Submit failed: tracking codes exhausted")
	return Conflict(msgCodeExhausted)
}

// Track returns the request with the given tracking code, in any letter case
func (s *EventRequestService) Track(ctx context.Context, code string) (*TrackResult, error) {
	code = tracking.Normalize(code)
	if code == "" {
		return nil, BadRequest(msgCodeRequired)
	}
	if !tracking.Valid(code) {
		metrics.RecordTrackingLookup(false)
		return nil, NotFound(msgEventNotFound)
	}

	rec, err := s.store.GetByTrackingCode(ctx, code)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.RecordTrackingLookup(false)
		}
		return nil, fromAppError(err, msgEventNotFound)
	}
	metrics.RecordTrackingLookup(true)

	return &TrackResult{
		Request:           rec,
		StatusLabel:       rec.Status.Label(),
		StatusDescription: rec.Status.Description(),
	}, nil
}

// List returns requests newest first, optionally only those with status
func (s *EventRequestService) List(ctx context.Context, status string) ([]domain.EventRequest, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	var filter store.ListFilter
	if status = strings.TrimSpace(status); status != "" && status != "all" {
		st, ok := domain.ParseStatus(status)
		if !ok {
			return nil, BadRequest(fmt.Sprintf("invalid status %q: must be one of %s", status, strings.Join(eventapi.Statuses, ", ")))
		}
		filter.Status = &st
	}

	requests, err := s.store.List(ctx, filter)
	if err != nil {
		log.Error().Str("component", "event_request").Err(err).Msg("List failed")
		return nil, err
	}
	return requests, nil
}

// Get returns one request by id
func (s *EventRequestService) Get(ctx context.Context, id uint) (*domain.EventRequest, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fromAppError(err, msgRequestNotFound)
	}
	return rec, nil
}

// UpdateStatus moves a request to status. Any status may follow any other;
// setting the current status again changes nothing and sends no notification.
func (s *EventRequestService) UpdateStatus(ctx context.Context, id uint, status string) (*domain.EventRequest, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	st, ok := domain.ParseStatus(strings.TrimSpace(status))
	if !ok {
		return nil, BadRequest(fmt.Sprintf("invalid status %q: must be one of %s", status, strings.Join(eventapi.Statuses, ", ")))
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fromAppError(err, msgRequestNotFound)
	}
	if current.Status == st {
		return current, nil
	}

	updated, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, fromAppError(err, msgRequestNotFound)
	}

	log.Info().
		Str("component", "event_request").
		Uint("id", id).
		Str("from", string(current.Status)).
		Str("to", string(st)).
		Msg("Status updated")
	metrics.RecordStatusChange(string(st))

	s.notifyAsync(ctx, "status_changed", updated, s.notifier.StatusChanged)
	return updated, nil
}

// UpdateNotes replaces the internal notes of a request. Blank notes clear them.
func (s *EventRequestService) UpdateNotes(ctx context.Context, id uint, notes string) (*domain.EventRequest, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateNotes(ctx, id, optional(&notes))
	if err != nil {
		return nil, fromAppError(err, msgRequestNotFound)
	}
	return updated, nil
}

// Stats returns the number of requests in each status
func (s *EventRequestService) Stats(ctx context.Context) (*eventapi.Stats, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &eventapi.Stats{
		New:       counts[domain.StatusNew],
		InReview:  counts[domain.StatusInReview],
		Converted: counts[domain.StatusConverted],
		Rejected:  counts[domain.StatusRejected],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// Wait blocks until background notifications have finished
func (s *EventRequestService) Wait() {
	s.deliveries.wait()
}

func (s *EventRequestService) authorize(ctx context.Context) error {
	if err := s.authz.AuthorizeAdmin(ctx); err != nil {
		return Forbidden(err.Error())
	}
	return nil
}

// notifyAsync delivers a notification about rec in the background. Deliveries
// for one request keep the order of the changes that caused them.
func (s *EventRequestService) notifyAsync(ctx context.Context, event string, rec *domain.EventRequest, send func(context.Context, *domain.EventRequest) error) {
	snapshot := *rec
	base := context.WithoutCancel(ctx)

	s.deliveries.push(snapshot.ID, func() {
		nctx, cancel := context.WithTimeout(base, s.limits.NotifyTimeout)
		defer cancel()

		if err := send(nctx, &snapshot); err != nil {
			log.Warn().
				Str("component", "event_request").
				Str("event", event).
				Str("tracking_code", snapshot.TrackingCode).
				Err(err).
				Msg("Notification failed")
		}
	})
}

// storeImages hands every image to the image store concurrently, keeping the submitted order
func (s *EventRequestService) storeImages(ctx context.Context, images []eventapi.InspirationImage) ([]eventapi.InspirationImage, error) {
	if images == nil {
		return nil, nil
	}
	if len(images) > s.limits.MaxImages {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("at most %d inspiration images are allowed", s.limits.MaxImages))
	}

	stored := make([]eventapi.InspirationImage, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			ref, err := s.images.Put(gctx, img)
			if err != nil {
				return err
			}
			stored[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardImages(ctx, stored)
		return nil, err
	}
	return stored, nil
}

// discardImages deletes stored images that no record refers to. Failures are
// only logged.
func (s *EventRequestService) discardImages(ctx context.Context, images []eventapi.InspirationImage) {
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		if err := s.images.Delete(ctx, img); err != nil {
			log.Warn().
				Str("component", "event_request").
				Str("key", img.Key).
				Err(err).
				Msg("Failed to delete unused inspiration image")
		}
	}
}

// buildRecord validates p and converts it to a record. Absent and blank
// optional fields become NULL.
func (s *EventRequestService) buildRecord(p *eventapi.SubmitRequest) (*domain.EventRequest, error) {
	name := strings.TrimSpace(p.Name)
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if name == "" || email == "" {
		return nil, BadRequest(msgNameEmailRequired)
	}
	contact := []struct{ field, value string }{{"name", name}, {"email", email}, {"phone", deref(p.Phone)}}
	for _, c := range contact {
		if strings.ContainsFunc(c.value, unicode.IsControl) {
			return nil, BadRequest(c.field + " must not contain control characters")
		}
	}

	rec := &domain.EventRequest{
		Name:          name,
		Email:         email,
		Phone:         optional(p.Phone),
		Message:       optional(p.Message),
		EventCategory: optional(p.EventCategory),
		EventType:     optional(p.EventType),
		Venue:         optional(p.Venue),
		BudgetRange:   optional(p.BudgetRange),
		MenuCategory:  optional(p.MenuCategory),
		DecorTheme:    optional(p.DecorTheme),
		DecorVision:   optional(p.DecorVision),
		Status:        domain.StatusNew,
	}

	enums := []struct {
		field   string
		value   *string
		allowed []string
	}{
		{"eventCategory", rec.EventCategory, eventapi.EventCategories},
		{"budgetRange", rec.BudgetRange, eventapi.BudgetRanges},
		{"menuCategory", rec.MenuCategory, eventapi.MenuCategories},
		{"decorTheme", rec.DecorTheme, eventapi.DecorThemes},
	}
	for _, e := range enums {
		if e.value != nil && !eventapi.IsOneOf(*e.value, e.allowed) {
			return nil, BadRequest(fmt.Sprintf("invalid %s %q: must be one of %s", e.field, *e.value, strings.Join(e.allowed, ", ")))
		}
	}

	if date := optional(p.EventDate); date != nil {
		d, err := parseEventDate(*date)
		if err != nil {
			return nil, BadRequest("eventDate must be an ISO date (YYYY-MM-DD)")
		}
		rec.EventDate = &d
	}

	if p.GuestCount != nil {
		if *p.GuestCount < 1 {
			return nil, BadRequest("guestCount must be at least 1")
		}
		guests := *p.GuestCount
		rec.GuestCount = &guests
	}

	if p.MenuSections != nil {
		rec.SetSections(p.MenuSections.Complete())
	}

	if p.DecorColors != nil {
		colors := make([]string, 0, len(p.DecorColors))
		for _, c := range p.DecorColors {
			if c = strings.TrimSpace(c); c != "" {
				colors = append(colors, c)
			}
		}
		rec.SetColors(colors)
	}

	return rec, nil
}

// parseEventDate accepts a calendar date or an RFC 3339 timestamp, keeping only the date
func parseEventDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

// optional trims v and maps blank or placeholder values to nil
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" || s == "undefined" || s == "null" {
		return nil
	}
	return &s
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
