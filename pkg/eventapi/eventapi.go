// Package eventapi holds the JSON shapes exchanged between the event wizard
// and the event request API.
package eventapi

import (
	"encoding/json"
	"slices"
)

// Event categories
const (
	CategorySocial    = "social"
	CategoryCorporate = "corporate"
)

// EventCategories lists the accepted event categories
var EventCategories = []string{CategorySocial, CategoryCorporate}

// SocialEventTypes and CorporateEventTypes are the event types offered per category
var (
	SocialEventTypes = []string{
		"wedding", "sendoff", "kitchen-party", "engagement", "birthday", "anniversary",
		"baby-shower", "bridal-shower", "graduation", "reunion", "other",
	}
	CorporateEventTypes = []string{
		"conference", "workshop", "product-launch", "networking", "award-ceremony",
		"corporate-retreat", "agm", "other",
	}
)

// EventTypesFor returns the event types offered for a category
func EventTypesFor(category string) []string {
	switch category {
	case CategorySocial:
		return SocialEventTypes
	case CategoryCorporate:
		return CorporateEventTypes
	}
	return nil
}

// MenuCategories lists the cuisines offered in the menu step
var MenuCategories = []string{"swahili", "asian", "mediterranean", "bbq"}

// MenuSectionNames lists every menu section, in display order
var MenuSectionNames = []string{"appetizers", "soups", "salads", "grill", "pot", "desserts"}

// DecorThemes lists the décor themes offered in the décor step
var DecorThemes = []string{"elegant", "modern", "traditional", "beach", "garden", "luxury", "rustic", "minimalist"}

// BudgetRanges lists the budget brackets offered in the review step
var BudgetRanges = []string{"under-1m", "1m-3m", "3m-5m", "5m-10m", "above-10m"}

// Statuses lists every request status
var Statuses = []string{"new", "in_review", "converted", "rejected"}

// IsOneOf reports whether v is in values
func IsOneOf(v string, values []string) bool {
	return slices.Contains(values, v)
}

// MenuSections maps a menu section name to the selected item names
type MenuSections map[string][]string

// Complete returns a copy with every known section present. Unknown sections are kept.
func (m MenuSections) Complete() MenuSections {
	out := make(MenuSections, len(MenuSectionNames))
	for _, name := range MenuSectionNames {
		out[name] = []string{}
	}
	for name, items := range m {
		if items == nil {
			items = []string{}
		}
		out[name] = slices.Clone(items)
	}
	return out
}

// InspirationImage is an image attached to a request. On submission Data carries a
// base64 data URL; once stored, URL and Key may replace it.
type InspirationImage struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
	Key  string `json:"key,omitempty"`
}

// SubmitRequest is the body of POST /api/event-requests. Unrecognised fields are ignored.
type SubmitRequest struct {
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Phone             *string            `json:"phone,omitempty"`
	Message           *string            `json:"message,omitempty"`
	EventCategory     *string            `json:"eventCategory,omitempty"`
	EventType         *string            `json:"eventType,omitempty"`
	EventDate         *string            `json:"eventDate,omitempty"`
	GuestCount        *int               `json:"guestCount,omitempty"`
	Venue             *string            `json:"venue,omitempty"`
	BudgetRange       *string            `json:"budgetRange,omitempty"`
	MenuCategory      *string            `json:"menuCategory,omitempty"`
	MenuSections      MenuSections       `json:"menuSections,omitempty"`
	DecorTheme        *string            `json:"decorTheme,omitempty"`
	DecorVision       *string            `json:"decorVision,omitempty"`
	DecorColors       []string           `json:"decorColors,omitempty"`
	InspirationImages []InspirationImage `json:"inspirationImages,omitempty"`
}

// StatusUpdateRequest is the body of PATCH /api/event-requests/{id}/status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// NotesUpdateRequest is the body of PATCH /api/event-requests/{id}/notes
type NotesUpdateRequest struct {
	Notes string `json:"notes"`
}

// Envelope is the response wrapper used by every endpoint
type Envelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data,omitempty"`
	TrackingCode string          `json:"trackingCode,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Stats holds per-status request counts
type Stats struct {
	Total     int64 `json:"total"`
	New       int64 `json:"new"`
	InReview  int64 `json:"in_review"`
	Converted int64 `json:"converted"`
	Rejected  int64 `json:"rejected"`
}
