// Package transport exposes the event request service over HTTP on the goa runtime.
package transport

import (
	"context"

	goa "goa.design/goa/v3/pkg"

	"fasplanners/internal/services"
	"fasplanners/pkg/eventapi"
)

// ServiceName is the goa service name stored in request contexts
const ServiceName = "event_requests"

// TrackPayload is the payload of the track endpoint
type TrackPayload struct {
	Code string
}

// ListPayload is the payload of the list endpoint
type ListPayload struct {
	Status string
}

// GetPayload is the payload of the get endpoint
type GetPayload struct {
	ID uint
}

// UpdateStatusPayload is the payload of the update status endpoint
type UpdateStatusPayload struct {
	ID     uint
	Status string
}

// UpdateNotesPayload is the payload of the update notes endpoint
type UpdateNotesPayload struct {
	ID    uint
	Notes string
}

// Endpoints wraps the event request and health service methods
type Endpoints struct {
	Submit       goa.Endpoint
	Track        goa.Endpoint
	List         goa.Endpoint
	Get          goa.Endpoint
	UpdateStatus goa.Endpoint
	UpdateNotes  goa.Endpoint
	Stats        goa.Endpoint
	Health       goa.Endpoint
}

// NewEndpoints wraps the methods of svc and health
func NewEndpoints(svc *services.EventRequestService, health *services.HealthService) *Endpoints {
	return &Endpoints{
		Submit:       NewSubmitEndpoint(svc),
		Track:        NewTrackEndpoint(svc),
		List:         NewListEndpoint(svc),
		Get:          NewGetEndpoint(svc),
		UpdateStatus: NewUpdateStatusEndpoint(svc),
		UpdateNotes:  NewUpdateNotesEndpoint(svc),
		Stats:        NewStatsEndpoint(svc),
		Health:       NewHealthEndpoint(health),
	}
}

// Use applies the given middleware to all the endpoints
func (e *Endpoints) Use(m func(goa.Endpoint) goa.Endpoint) {
	e.Submit = m(e.Submit)
	e.Track = m(e.Track)
	e.List = m(e.List)
	e.Get = m(e.Get)
	e.UpdateStatus = m(e.UpdateStatus)
	e.UpdateNotes = m(e.UpdateNotes)
	e.Stats = m(e.Stats)
	e.Health = m(e.Health)
}

// NewSubmitEndpoint returns an endpoint function that calls Submit
func NewSubmitEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		p := req.(*eventapi.SubmitRequest)
		return s.Submit(ctx, p)
	}
}

// NewTrackEndpoint returns an endpoint function that calls Track
func NewTrackEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		p := req.(*TrackPayload)
		return s.Track(ctx, p.Code)
	}
}

// NewListEndpoint returns an endpoint function that calls List
func NewListEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		p := req.(*ListPayload)
		return s.List(ctx, p.Status)
	}
}

// NewGetEndpoint returns an endpoint function that calls Get
func NewGetEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		p := req.(*GetPayload)
		return s.Get(ctx, p.ID)
	}
}

// NewUpdateStatusEndpoint returns an endpoint function that calls UpdateStatus
func NewUpdateStatusEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		p := req.(*UpdateStatusPayload)
		return s.UpdateStatus(ctx, p.ID, p.Status)
	}
}

// NewUpdateNotesEndpoint returns an endpoint function that calls UpdateNotes
func NewUpdateNotesEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		p := req.(*UpdateNotesPayload)
		return s.UpdateNotes(ctx, p.ID, p.Notes)
	}
}

// NewStatsEndpoint returns an endpoint function that calls Stats
func NewStatsEndpoint(s *services.EventRequestService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		return s.Stats(ctx)
	}
}

// NewHealthEndpoint returns an endpoint function that calls Check
func NewHealthEndpoint(s *services.HealthService) goa.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		return s.Check(ctx)
	}
}
