package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fasplanners/pkg/eventapi"
)

// EventRequest represents one submission of the event wizard
type EventRequest struct {
	ID                uint                                             `gorm:"primaryKey" json:"id"`
	TrackingCode      string                                           `gorm:"size:12;uniqueIndex;not null" json:"tracking_code"`
	Name              string                                           `gorm:"not null" json:"name"`
	Email             string                                           `gorm:"not null;index" json:"email"`
	Phone             *string                                          `json:"phone"`
	EventCategory     *string                                          `gorm:"size:50" json:"event_category"`
	EventType         *string                                          `json:"event_type"`
	EventDate         *time.Time                                       `gorm:"type:date" json:"event_date"`
	GuestCount        *int                                             `json:"guest_count"`
	Venue             *string                                          `json:"venue"`
	BudgetRange       *string                                          `json:"budget_range"`
	MenuCategory      *string                                          `gorm:"size:50" json:"menu_category"`
	MenuSections      *datatypes.JSONType[eventapi.MenuSections]       `json:"menu_sections"`
	DecorTheme        *string                                          `gorm:"size:50" json:"decor_theme"`
	DecorVision       *string                                          `gorm:"type:text" json:"decor_vision"`
	DecorColors       *datatypes.JSONType[[]string]                    `json:"decor_colors"`
	InspirationImages *datatypes.JSONType[[]eventapi.InspirationImage] `json:"inspiration_images"`
	Message           *string                                          `gorm:"type:text" json:"message"`
	Notes             *string                                          `gorm:"type:text" json:"notes"`
	Status            Status                                           `gorm:"size:20;not null;default:'new';index" json:"status"`
	CreatedAt         time.Time                                        `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time                                        `json:"updated_at"`
}

// TableName specifies the table name for EventRequest
func (EventRequest) TableName() string {
	return "event_requests"
}

// BeforeCreate hook
func (e *EventRequest) BeforeCreate(tx *gorm.DB) error {
	if e.Status == "" {
		e.Status = StatusNew
	}
	if !e.Status.Valid() {
		return fmt.Errorf("invalid status %q", e.Status)
	}
	return nil
}

// Sections returns the stored menu sections, nil when none were submitted
func (e *EventRequest) Sections() eventapi.MenuSections {
	if e.MenuSections == nil {
		return nil
	}
	return e.MenuSections.Data()
}

// Colors returns the stored décor colours
func (e *EventRequest) Colors() []string {
	if e.DecorColors == nil {
		return nil
	}
	return e.DecorColors.Data()
}

// Images returns the stored inspiration image references
func (e *EventRequest) Images() []eventapi.InspirationImage {
	if e.InspirationImages == nil {
		return nil
	}
	return e.InspirationImages.Data()
}

// SetSections stores sections. A nil map leaves the column NULL.
func (e *EventRequest) SetSections(sections eventapi.MenuSections) {
	e.MenuSections = nil
	if sections != nil {
		e.MenuSections = jsonColumn(sections)
	}
}

// SetColors stores colors. A nil slice leaves the column NULL.
func (e *EventRequest) SetColors(colors []string) {
	e.DecorColors = nil
	if colors != nil {
		e.DecorColors = jsonColumn(colors)
	}
}

// SetImages stores images. A nil slice leaves the column NULL.
func (e *EventRequest) SetImages(images []eventapi.InspirationImage) {
	e.InspirationImages = nil
	if images != nil {
		e.InspirationImages = jsonColumn(images)
	}
}

func jsonColumn[T any](v T) *datatypes.JSONType[T] {
	col := datatypes.NewJSONType(v)
	return &col
}
