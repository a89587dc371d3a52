package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	goahttp "goa.design/goa/v3/http"
	goa "goa.design/goa/v3/pkg"

	"fasplanners/internal/domain"
	"fasplanners/internal/services"
	"fasplanners/pkg/eventapi"
)

// Server lists the event request HTTP handlers
type Server struct {
	Mounts       []*MountPoint
	Submit       http.Handler
	Track        http.Handler
	List         http.Handler
	Get          http.Handler
	UpdateStatus http.Handler
	UpdateNotes  http.Handler
	Stats        http.Handler
	Health       http.Handler
}

// MountPoint holds information about the mounted endpoints
type MountPoint struct {
	// Method is the name of the service method served by the mounted HTTP handler
	Method string
	// Verb is the HTTP method
	Verb string
	// Pattern is the HTTP request path pattern
	Pattern string
}

// Decoder and Encoder constructors, as used by goa generated servers
type (
	DecoderFunc      func(*http.Request) goahttp.Decoder
	EncoderFunc      func(context.Context, http.ResponseWriter) goahttp.Encoder
	ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)
)

type handlerSet struct {
	mux        goahttp.Muxer
	decoder    DecoderFunc
	encoder    EncoderFunc
	errhandler ErrorHandlerFunc
	maxBody    int64
}

// New instantiates HTTP handlers for all the event request service endpoints.
// maxBodyBytes bounds request bodies; zero means no limit.
func New(
	e *Endpoints,
	mux goahttp.Muxer,
	decoder DecoderFunc,
	encoder EncoderFunc,
	errhandler ErrorHandlerFunc,
	maxBodyBytes int64,
) *Server {
	h := &handlerSet{mux: mux, decoder: decoder, encoder: encoder, errhandler: errhandler, maxBody: maxBodyBytes}
	return &Server{
		Mounts: []*MountPoint{
			{"Submit", "POST", "/api/event-requests"},
			{"List", "GET", "/api/event-requests"},
			{"Stats", "GET", "/api/event-requests/stats"},
			{"Get", "GET", "/api/event-requests/{id}"},
			{"UpdateStatus", "PATCH", "/api/event-requests/{id}/status"},
			{"UpdateNotes", "PATCH", "/api/event-requests/{id}/notes"},
			{"Track", "GET", "/api/track-event"},
			{"Health", "GET", "/health"},
		},
		Submit:       h.handler("submit", "Failed to submit request", e.Submit, h.decodeSubmit, encodeSubmit),
		Track:        h.handler("track", "Failed to track event", e.Track, decodeTrack, encodeTrack),
		List:         h.handler("list", "Failed to fetch requests", e.List, decodeList, encodeData),
		Get:          h.handler("get", "Failed to fetch request", e.Get, h.decodeGet, encodeData),
		UpdateStatus: h.handler("update_status", "Failed to update status", e.UpdateStatus, h.decodeUpdateStatus, encodeUpdated("Status updated successfully")),
		UpdateNotes:  h.handler("update_notes", "Failed to update notes", e.UpdateNotes, h.decodeUpdateNotes, encodeUpdated("Notes saved successfully")),
		Stats:        h.handler("stats", "Failed to fetch statistics", e.Stats, decodeNone, encodeData),
		Health:       h.handler("health", "Health check failed", e.Health, decodeNone, encodeHealth),
	}
}

// Service returns the name of the service served
func (s *Server) Service() string { return ServiceName }

// Use wraps the server handlers with the given middleware
func (s *Server) Use(m func(http.Handler) http.Handler) {
	s.Submit = m(s.Submit)
	s.Track = m(s.Track)
	s.List = m(s.List)
	s.Get = m(s.Get)
	s.UpdateStatus = m(s.UpdateStatus)
	s.UpdateNotes = m(s.UpdateNotes)
	s.Stats = m(s.Stats)
	s.Health = m(s.Health)
}

// Mount configures the mux to serve the event request endpoints
func (s *Server) Mount(mux goahttp.Muxer) {
	handlers := map[string]http.Handler{
		"Submit":       s.Submit,
		"List":         s.List,
		"Stats":        s.Stats,
		"Get":          s.Get,
		"UpdateStatus": s.UpdateStatus,
		"UpdateNotes":  s.UpdateNotes,
		"Track":        s.Track,
		"Health":       s.Health,
	}
	for _, m := range s.Mounts {
		mux.Handle(m.Verb, m.Pattern, handlers[m.Method].ServeHTTP)
	}
}

type (
	decodeFunc func(w http.ResponseWriter, r *http.Request) (any, error)
	encodeFunc func(ctx context.Context, enc goahttp.Encoder, w http.ResponseWriter, res any) error
)

// response is the success envelope
type response struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	TrackingCode string `json:"trackingCode,omitempty"`
	Message      string `json:"message,omitempty"`
}

// errorResponse is the failure envelope
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *handlerSet) handler(method, failure string, endpoint goa.Endpoint, decode decodeFunc, encode encodeFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), goahttp.AcceptTypeKey, r.Header.Get("Accept"))
		ctx = context.WithValue(ctx, goa.MethodKey, method)
		ctx = context.WithValue(ctx, goa.ServiceKey, ServiceName)

		payload, err := decode(w, r)
		if err != nil {
			h.encodeError(ctx, w, err, failure)
			return
		}

		res, err := endpoint(ctx, payload)
		if err != nil {
			h.encodeError(ctx, w, err, failure)
			return
		}
		if err := encode(ctx, h.encoder(ctx, w), w, res); err != nil {
			h.errhandler(ctx, w, err)
		}
	})
}

// encodeError writes the failure envelope. Service errors keep their message;
// anything else is logged and reported with the generic failure text.
func (h *handlerSet) encodeError(ctx context.Context, w http.ResponseWriter, err error, failure string) {
	status, message := http.StatusInternalServerError, failure

	var se *goa.ServiceError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status, message = http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.As(err, &se) && !se.Fault:
		status, message = statusOf(se.Name), se.Message
	}
	if status == http.StatusInternalServerError {
		h.errhandler(ctx, w, err)
	}

	enc := h.encoder(ctx, w)
	w.WriteHeader(status)
	if encErr := enc.Encode(&errorResponse{Success: false, Error: message}); encErr != nil {
		h.errhandler(ctx, w, encErr)
	}
}

func statusOf(name string) int {
	switch name {
	case services.ErrNameNotFound:
		return http.StatusNotFound
	case services.ErrNameConflict:
		return http.StatusConflict
	case services.ErrNameForbidden:
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

func (h *handlerSet) body(w http.ResponseWriter, r *http.Request) *http.Request {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	return r
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func (h *handlerSet) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := h.decoder(h.body(w, r)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return goa.DecodePayloadError(err.Error())
}

func (h *handlerSet) decodeSubmit(w http.ResponseWriter, r *http.Request) (any, error) {
	var body eventapi.SubmitRequest
	if err := h.decodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

func decodeTrack(_ http.ResponseWriter, r *http.Request) (any, error) {
	return &TrackPayload{Code: r.URL.Query().Get("code")}, nil
}

func decodeList(_ http.ResponseWriter, r *http.Request) (any, error) {
	return &ListPayload{Status: r.URL.Query().Get("status")}, nil
}

func decodeNone(http.ResponseWriter, *http.Request) (any, error) {
	return nil, nil
}

func (h *handlerSet) decodeID(r *http.Request) (uint, error) {
	raw := h.mux.Vars(r)["id"]
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, services.BadRequest("invalid request id " + strconv.Quote(raw))
	}
	return uint(id), nil
}

func (h *handlerSet) decodeGet(_ http.ResponseWriter, r *http.Request) (any, error) {
	id, err := h.decodeID(r)
	if err != nil {
		return nil, err
	}
	return &GetPayload{ID: id}, nil
}

func (h *handlerSet) decodeUpdateStatus(w http.ResponseWriter, r *http.Request) (any, error) {
	id, err := h.decodeID(r)
	if err != nil {
		return nil, err
	}
	var body eventapi.StatusUpdateRequest
	if err := h.decodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	return &UpdateStatusPayload{ID: id, Status: body.Status}, nil
}

func (h *handlerSet) decodeUpdateNotes(w http.ResponseWriter, r *http.Request) (any, error) {
	id, err := h.decodeID(r)
	if err != nil {
		return nil, err
	}
	var body eventapi.NotesUpdateRequest
	if err := h.decodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	return &UpdateNotesPayload{ID: id, Notes: body.Notes}, nil
}

func encodeSubmit(_ context.Context, enc goahttp.Encoder, w http.ResponseWriter, v any) error {
	res := v.(*services.SubmitResult)
	w.WriteHeader(http.StatusCreated)
	return enc.Encode(&response{
		Success:      true,
		Data:         res.Request,
		TrackingCode: res.TrackingCode,
		Message:      res.Message,
	})
}

// trackedRequest is a record with its customer-facing status copy
type trackedRequest struct {
	*domain.EventRequest
	StatusLabel       string `json:"statusLabel"`
	StatusDescription string `json:"statusDescription"`
}

func encodeTrack(_ context.Context, enc goahttp.Encoder, w http.ResponseWriter, v any) error {
	res := v.(*services.TrackResult)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(&response{
		Success: true,
		Data: &trackedRequest{
			EventRequest:      res.Request,
			StatusLabel:       res.StatusLabel,
			StatusDescription: res.StatusDescription,
		},
	})
}

func encodeData(_ context.Context, enc goahttp.Encoder, w http.ResponseWriter, v any) error {
	w.WriteHeader(http.StatusOK)
	return enc.Encode(&response{Success: true, Data: v})
}

func encodeUpdated(message string) encodeFunc {
	return func(_ context.Context, enc goahttp.Encoder, w http.ResponseWriter, v any) error {
		w.WriteHeader(http.StatusOK)
		return enc.Encode(&response{Success: true, Data: v, Message: message})
	}
}

func encodeHealth(_ context.Context, enc goahttp.Encoder, w http.ResponseWriter, v any) error {
	res := v.(*services.HealthResult)
	if res.Healthy() {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return enc.Encode(res)
}
