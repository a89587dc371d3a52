package design

import (
	. "goa.design/goa/v3/dsl"

	"fasplanners/pkg/eventapi"
)

var _ = API("fasplanners", func() {
	Title("Fas Exclusive Planners API")
	Description("Event request wizard submissions, tracking and admin review")
	Version("1.0.0")
	Server("api", func() {
		Host("localhost", func() {
			URI("http://localhost:8000")
		})
	})
})

// Health check
var _ = Service("health", func() {
	Description("Health check service")
	Method("check", func() {
		Result(HealthResult)
		HTTP(func() {
			GET("/health")
			Response(StatusOK)
		})
	})
})

var HealthResult = Type("HealthResult", func() {
	Attribute("status", String, "Service status", func() {
		Enum("healthy", "degraded")
		Example("healthy")
	})
	Attribute("service", String, "Service name", func() {
		Example("Fas Exclusive Planners API")
	})
	Attribute("version", String, "Service version")
	Attribute("database", String, "Database status", func() {
		Enum("up", "down")
	})
	Required("status", "service", "version", "database")
})

// Event requests. Every response is wrapped in {success, data, trackingCode?, message?};
// failures are {success: false, error}.
var _ = Service("event_requests", func() {
	Description("Event request submission, tracking and review")
	Error("bad_request")
	Error("not_found")
	Error("conflict")
	Error("forbidden")

	HTTP(func() {
		Response("bad_request", StatusBadRequest)
		Response("not_found", StatusNotFound)
		Response("conflict", StatusConflict)
		Response("forbidden", StatusForbidden)
	})

	Method("submit", func() {
		Description("Store a completed wizard draft and return its tracking code")
		Payload(SubmitPayload)
		Result(SubmitResult)
		HTTP(func() {
			POST("/api/event-requests")
			Response(StatusCreated)
		})
	})

	Method("list", func() {
		Description("List requests newest first, optionally only one status")
		Payload(func() {
			Attribute("status", String, "Status filter; all or empty means every status", func() {
				Enum(enum(append([]string{"all"}, eventapi.Statuses...))...)
			})
		})
		Result(ListResult)
		HTTP(func() {
			GET("/api/event-requests")
			Param("status")
			Response(StatusOK)
		})
	})

	Method("stats", func() {
		Description("Count requests per status")
		Result(StatsResult)
		HTTP(func() {
			GET("/api/event-requests/stats")
			Response(StatusOK)
		})
	})

	Method("get", func() {
		Description("Get one request by id")
		Payload(func() {
			Attribute("id", UInt, "Request ID", func() {
				Minimum(1)
			})
			Required("id")
		})
		Result(RequestResult)
		HTTP(func() {
			GET("/api/event-requests/{id}")
			Response(StatusOK)
		})
	})

	Method("update_status", func() {
		Description("Move a request to another status; any status may follow any other")
		Payload(func() {
			Attribute("id", UInt, "Request ID")
			Attribute("status", String, "New status", func() {
				Enum(enum(eventapi.Statuses)...)
			})
			Required("id", "status")
		})
		Result(RequestResult)
		HTTP(func() {
			PATCH("/api/event-requests/{id}/status")
			Response(StatusOK)
		})
	})

	Method("update_notes", func() {
		Description("Replace the internal notes of a request; blank notes clear them")
		Payload(func() {
			Attribute("id", UInt, "Request ID")
			Attribute("notes", String, "Internal notes")
			Required("id")
		})
		Result(RequestResult)
		HTTP(func() {
			PATCH("/api/event-requests/{id}/notes")
			Response(StatusOK)
		})
	})

	Method("track", func() {
		Description("Look up a request by tracking code, in any letter case")
		Payload(func() {
			Attribute("code", String, "Tracking code", func() {
				Example("EVT-K7M2QP")
			})
			Required("code")
		})
		Result(TrackResult)
		HTTP(func() {
			GET("/api/track-event")
			Param("code")
			Response(StatusOK)
		})
	})
})

var InspirationImage = Type("InspirationImage", func() {
	Attribute("name", String, "File name")
	Attribute("type", String, "Media type", func() {
		Pattern("^image/")
	})
	Attribute("data", String, "Base64 data URL, present until the image is offloaded")
	Attribute("url", String, "Public URL of the stored image")
	Attribute("key", String, "Object key of the stored image")
	Required("name")
})

var SubmitPayload = Type("SubmitPayload", func() {
	Attribute("name", String, "Contact name")
	Attribute("email", String, "Contact email")
	Attribute("phone", String, "Contact phone")
	Attribute("message", String, "Free-text message")
	Attribute("eventCategory", String, "Event category", func() {
		Enum(enum(eventapi.EventCategories)...)
	})
	Attribute("eventType", String, "Event type")
	Attribute("eventDate", String, "ISO date; empty means unknown", func() {
		Example("2026-12-12")
	})
	Attribute("guestCount", Int, "Expected guests", func() {
		Minimum(1)
	})
	Attribute("venue", String, "Venue")
	Attribute("budgetRange", String, "Budget bracket", func() {
		Enum(enum(eventapi.BudgetRanges)...)
	})
	Attribute("menuCategory", String, "Cuisine", func() {
		Enum(enum(eventapi.MenuCategories)...)
	})
	Attribute("menuSections", MapOf(String, ArrayOf(String)), "Selected items per menu section")
	Attribute("decorTheme", String, "Décor theme", func() {
		Enum(enum(eventapi.DecorThemes)...)
	})
	Attribute("decorVision", String, "Décor vision")
	Attribute("decorColors", ArrayOf(String), "Décor colours")
	Attribute("inspirationImages", ArrayOf(InspirationImage), "Inspiration images", func() {
		MaxLength(5)
	})
	Required("name", "email")
})

var EventRequest = Type("EventRequest", func() {
	Attribute("id", UInt, "Request ID")
	Attribute("tracking_code", String, "Tracking code")
	Attribute("name", String, "Contact name")
	Attribute("email", String, "Contact email")
	Attribute("phone", String, "Contact phone")
	Attribute("event_category", String, "Event category")
	Attribute("event_type", String, "Event type")
	Attribute("event_date", String, "Event date", func() {
		Format(FormatDateTime)
	})
	Attribute("guest_count", Int, "Expected guests")
	Attribute("venue", String, "Venue")
	Attribute("budget_range", String, "Budget bracket")
	Attribute("menu_category", String, "Cuisine")
	Attribute("menu_sections", MapOf(String, ArrayOf(String)), "Selected items per menu section")
	Attribute("decor_theme", String, "Décor theme")
	Attribute("decor_vision", String, "Décor vision")
	Attribute("decor_colors", ArrayOf(String), "Décor colours")
	Attribute("inspiration_images", ArrayOf(InspirationImage), "Inspiration images")
	Attribute("message", String, "Free-text message")
	Attribute("notes", String, "Internal notes")
	Attribute("status", String, "Review status", func() {
		Enum(enum(eventapi.Statuses)...)
	})
	Attribute("created_at", String, "Creation time", func() {
		Format(FormatDateTime)
	})
	Attribute("updated_at", String, "Last update time", func() {
		Format(FormatDateTime)
	})
	Required("id", "tracking_code", "name", "email", "status", "created_at", "updated_at")
})

var TrackedRequest = Type("TrackedRequest", func() {
	Extend(EventRequest)
	Attribute("statusLabel", String, "Customer-facing status name", func() {
		Example("Under Review")
	})
	Attribute("statusDescription", String, "Customer-facing status explanation")
	Required("statusLabel", "statusDescription")
})

var Stats = Type("Stats", func() {
	Attribute("total", Int64, "All requests")
	Attribute("new", Int64, "Requests with status new")
	Attribute("in_review", Int64, "Requests with status in_review")
	Attribute("converted", Int64, "Requests with status converted")
	Attribute("rejected", Int64, "Requests with status rejected")
	Required("total", "new", "in_review", "converted", "rejected")
})

var SubmitResult = Type("SubmitResult", func() {
	Attribute("success", Boolean)
	Attribute("data", EventRequest)
	Attribute("trackingCode", String, "Tracking code of the new request", func() {
		Example("EVT-K7M2QP")
	})
	Attribute("message", String, func() {
		Example("Event request submitted successfully")
	})
	Required("success", "data", "trackingCode", "message")
})

var ListResult = Type("ListResult", func() {
	Attribute("success", Boolean)
	Attribute("data", ArrayOf(EventRequest))
	Required("success", "data")
})

var RequestResult = Type("RequestResult", func() {
	Attribute("success", Boolean)
	Attribute("data", EventRequest)
	Attribute("message", String)
	Required("success", "data")
})

var TrackResult = Type("TrackResult", func() {
	Attribute("success", Boolean)
	Attribute("data", TrackedRequest)
	Required("success", "data")
})

var StatsResult = Type("StatsResult", func() {
	Attribute("success", Boolean)
	Attribute("data", Stats)
	Required("success", "data")
})

func enum(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
