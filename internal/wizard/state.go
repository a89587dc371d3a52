// Package wizard implements the client side of the event request flow: a
// step-by-step draft, the predicates that gate each step, the payload built
// from the finished draft and a session that submits it.
package wizard

import (
	"maps"
	"slices"
	"strings"

	"fasplanners/pkg/eventapi"
)

// Step is a wizard page. Steps are numbered from 1.
type Step int

const (
	StepCategory Step = iota + 1
	StepEventType
	StepMenuCategory
	StepMenuItems
	StepDetails
	StepContact
	StepDecor
	StepReview
)

const (
	FirstStep = StepCategory
	LastStep  = StepReview
)

// DefaultGuestCount is the guest count a new draft starts with
const DefaultGuestCount = 50

// MaxImages is the number of inspiration images a draft can hold
const MaxImages = 5

func (s Step) String() string {
	switch s {
	case StepCategory:
		return "Category"
	case StepEventType:
		return "Event Type"
	case StepMenuCategory:
		return "Menu Category"
	case StepMenuItems:
		return "Menu Items"
	case StepDetails:
		return "Event Details"
	case StepContact:
		return "Contact"
	case StepDecor:
		return "Décor"
	case StepReview:
		return "Review"
	}
	return "Unknown"
}

// Optional reports whether the step can always be left forward
func (s Step) Optional() bool {
	return s == StepMenuItems || s == StepDecor
}

// Phase is the lifecycle of a wizard session
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseSubmitted
	PhaseDiscarded
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseDiscarded:
		return "discarded"
	}
	return "unknown"
}

// Image is an inspiration image held locally until submission. Data is
// read from Path when empty.
type Image struct {
	Name string
	Type string
	Path string
	Data []byte
}

// Draft accumulates the answers of every step. Values are never shared
// between drafts; Reduce copies before it writes.
type Draft struct {
	EventCategory string
	EventType     string
	MenuCategory  string
	MenuSections  map[string][]string
	EventDate     string
	GuestCount    int
	Venue         string
	Name          string
	Email         string
	Phone         string
	Message       string
	DecorTheme    string
	DecorVision   string
	DecorColors   []string
	Images        []Image
	BudgetRange   string
}

// NewDraft returns an empty draft with every menu section present
func NewDraft() Draft {
	sections := make(map[string][]string, len(eventapi.MenuSectionNames))
	for _, name := range eventapi.MenuSectionNames {
		sections[name] = []string{}
	}
	return Draft{MenuSections: sections, GuestCount: DefaultGuestCount}
}

func (d Draft) clone() Draft {
	out := d
	out.MenuSections = make(map[string][]string, len(d.MenuSections))
	for name, items := range d.MenuSections {
		out.MenuSections[name] = slices.Clone(items)
	}
	out.DecorColors = slices.Clone(d.DecorColors)
	out.Images = slices.Clone(d.Images)
	return out
}

// State is the full wizard state. The zero value is not ready; use Start.
type State struct {
	Step         Step
	Draft        Draft
	Phase        Phase
	Error        string
	TrackingCode string
}

// Start returns the initial state: first step, empty draft
func Start() State {
	return State{Step: FirstStep, Draft: NewDraft(), Phase: PhaseEditing}
}

// Field names a free-text draft field
type Field int

const (
	FieldEventDate Field = iota
	FieldVenue
	FieldName
	FieldEmail
	FieldPhone
	FieldMessage
	FieldDecorVision
)

// Action is an input to Reduce
type Action interface {
	isAction()
}

type (
	// Next moves forward when the current step is complete
	Next struct{}
	// Back moves to the previous step, keeping every answer
	Back struct{}

	SelectCategory     struct{ Category string }
	SelectEventType    struct{ EventType string }
	SelectMenuCategory struct{ Category string }
	SelectDecorTheme   struct{ Theme string }
	SelectBudget       struct{ Budget string }

	// ToggleMenuItem adds Item to Section, or removes it when already selected
	ToggleMenuItem struct {
		Section string
		Item    string
	}
	// SetMenuSection replaces the selection of one section
	SetMenuSection struct {
		Section string
		Items   []string
	}

	SetText struct {
		Field Field
		Value string
	}
	SetGuestCount  struct{ Count int }
	SetDecorColors struct{ Colors []string }
	// AddImages appends images, dropping any beyond MaxImages
	AddImages   struct{ Images []Image }
	RemoveImage struct{ Index int }

	SubmitStarted   struct{}
	SubmitSucceeded struct{ TrackingCode string }
	SubmitFailed    struct{ Message string }
	// Discard closes the wizard without submitting
	Discard struct{}
)

func (Next) isAction()               {}
func (Back) isAction()               {}
func (SelectCategory) isAction()     {}
func (SelectEventType) isAction()    {}
func (SelectMenuCategory) isAction() {}
func (SelectDecorTheme) isAction()   {}
func (SelectBudget) isAction()       {}
func (ToggleMenuItem) isAction()     {}
func (SetMenuSection) isAction()     {}
func (SetText) isAction()            {}
func (SetGuestCount) isAction()      {}
func (SetDecorColors) isAction()     {}
func (AddImages) isAction()          {}
func (RemoveImage) isAction()        {}
func (SubmitStarted) isAction()      {}
func (SubmitSucceeded) isAction()    {}
func (SubmitFailed) isAction()       {}
func (Discard) isAction()            {}

// Reduce returns the state that follows s after a. s is never modified.
// Actions that are not allowed in the current state return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SubmitSucceeded:
		if s.Phase != PhaseSubmitting {
			return s
		}
		return State{Step: FirstStep, Draft: NewDraft(), Phase: PhaseSubmitted, TrackingCode: a.TrackingCode}
	case SubmitFailed:
		if s.Phase != PhaseSubmitting {
			return s
		}
		s.Phase = PhaseEditing
		s.Error = a.Message
		return s
	case Discard:
		if s.Phase == PhaseSubmitted || s.Phase == PhaseDiscarded {
			return s
		}
		return State{Step: FirstStep, Draft: NewDraft(), Phase: PhaseDiscarded}
	}

	if s.Phase != PhaseEditing {
		return s
	}

	switch a.(type) {
	case Next:
		if s.Step >= LastStep || Validate(s.Step, s.Draft) != nil {
			return s
		}
		s.Step++
		s.Error = ""
		return s
	case Back:
		if s.Step <= FirstStep {
			return s
		}
		s.Step--
		s.Error = ""
		return s
	case SubmitStarted:
		if s.Step != LastStep || ValidateAll(s.Draft) != nil {
			return s
		}
		s.Phase = PhaseSubmitting
		s.Error = ""
		return s
	}

	d := s.Draft.clone()
	switch a := a.(type) {
	case SelectCategory:
		if d.EventCategory != a.Category && !eventapi.IsOneOf(d.EventType, eventapi.EventTypesFor(a.Category)) {
			d.EventType = ""
		}
		d.EventCategory = a.Category
	case SelectEventType:
		d.EventType = a.EventType
	case SelectMenuCategory:
		d.MenuCategory = a.Category
	case SelectDecorTheme:
		d.DecorTheme = a.Theme
	case SelectBudget:
		d.BudgetRange = a.Budget
	case ToggleMenuItem:
		items := d.MenuSections[a.Section]
		if i := slices.Index(items, a.Item); i >= 0 {
			items = slices.Delete(items, i, i+1)
		} else {
			items = append(items, a.Item)
		}
		d.MenuSections[a.Section] = items
	case SetMenuSection:
		items := slices.Clone(a.Items)
		if items == nil {
			items = []string{}
		}
		d.MenuSections[a.Section] = items
	case SetText:
		setText(&d, a.Field, a.Value)
	case SetGuestCount:
		d.GuestCount = a.Count
	case SetDecorColors:
		d.DecorColors = slices.Clone(a.Colors)
	case AddImages:
		room := MaxImages - len(d.Images)
		if room > len(a.Images) {
			room = len(a.Images)
		}
		if room > 0 {
			d.Images = append(d.Images, a.Images[:room]...)
		}
	case RemoveImage:
		if a.Index < 0 || a.Index >= len(d.Images) {
			return s
		}
		d.Images = slices.Delete(d.Images, a.Index, a.Index+1)
	default:
		return s
	}
	s.Draft = d
	return s
}

func setText(d *Draft, f Field, v string) {
	switch f {
	case FieldEventDate:
		d.EventDate = strings.TrimSpace(v)
	case FieldVenue:
		d.Venue = v
	case FieldName:
		d.Name = v
	case FieldEmail:
		d.Email = v
	case FieldPhone:
		d.Phone = v
	case FieldMessage:
		d.Message = v
	case FieldDecorVision:
		d.DecorVision = v
	}
}

// SelectedItems returns the number of menu items chosen across all sections
func (d Draft) SelectedItems() int {
	n := 0
	for items := range maps.Values(d.MenuSections) {
		n += len(items)
	}
	return n
}
