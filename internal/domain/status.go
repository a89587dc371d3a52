package domain

// Status is the review state of an event request
type Status string

const (
	StatusNew       Status = "new"
	StatusInReview  Status = "in_review"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{StatusNew, StatusInReview, StatusConverted, StatusRejected}

// ParseStatus converts s to a Status, reporting whether it is known
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Label is the short customer-facing name of the status
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "New Request"
	case StatusInReview:
		return "Under Review"
	case StatusConverted:
		return "Confirmed"
	case StatusRejected:
		return "Unable to Proceed"
	}
	return string(s)
}

// Description is the customer-facing explanation shown on the tracking page
func (s Status) Description() string {
	switch s {
	case StatusNew:
		return "We've received your request and will review it soon!"
	case StatusInReview:
		return "Our team is reviewing your event details."
	case StatusConverted:
		return "Great news! Your event has been confirmed. Check your email for details."
	case StatusRejected:
		return "Unfortunately, we cannot proceed with this request at this time."
	}
	return "Status information unavailable."
}
