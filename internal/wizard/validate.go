package wizard

import (
	"fmt"
	"strings"
	"time"

	"fasplanners/pkg/eventapi"
)

// IncompleteError lists the fields that keep a step from being complete
type IncompleteError struct {
	Step   Step
	Fields []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s step is incomplete: %s", e.Step, strings.Join(e.Fields, ", "))
}

// Validate checks the fields step requires. Optional steps always pass.
func Validate(step Step, d Draft) error {
	var missing []string
	require := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}

	switch step {
	case StepCategory:
		require(eventapi.IsOneOf(d.EventCategory, eventapi.EventCategories), "eventCategory")
	case StepEventType:
		require(eventapi.IsOneOf(d.EventType, eventapi.EventTypesFor(d.EventCategory)), "eventType")
	case StepMenuCategory:
		require(eventapi.IsOneOf(d.MenuCategory, eventapi.MenuCategories), "menuCategory")
	case StepDetails:
		require(validDate(d.EventDate), "eventDate")
		require(d.GuestCount > 0, "guestCount")
	case StepContact:
		require(strings.TrimSpace(d.Name) != "", "name")
		require(strings.TrimSpace(d.Email) != "", "email")
		require(strings.TrimSpace(d.Phone) != "", "phone")
	case StepReview:
		require(eventapi.IsOneOf(d.BudgetRange, eventapi.BudgetRanges), "budgetRange")
	case StepMenuItems, StepDecor:
	default:
		return fmt.Errorf("unknown wizard step %d", step)
	}

	if len(missing) > 0 {
		return &IncompleteError{Step: step, Fields: missing}
	}
	return nil
}

// ValidateAll checks every step in order and returns the first failure
func ValidateAll(d Draft) error {
	for step := FirstStep; step <= LastStep; step++ {
		if err := Validate(step, d); err != nil {
			return err
		}
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
