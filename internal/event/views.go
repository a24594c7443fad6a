package event

import (
	"time"

	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
)

// View is a named preset of the event filter menu.
type View struct {
	Label  string
	Filter models.EventFilter
}

// Views returns the filter presets offered to actor's role, ending with
// the unfiltered list.
func Views(actor policy.Actor, now time.Time) []View {
	id := actor.ID
	upcoming := View{Label: "Upcoming events", Filter: models.EventFilter{StartAtOrAfter: &now}}
	past := View{Label: "Past events", Filter: models.EventFilter{EndBefore: &now}}
	all := View{Label: "All events"}

	switch actor.Role {
	case models.RoleSupport:
		return []View{
			{Label: "My events (assigned to me)", Filter: models.EventFilter{SupportID: &id}},
			{Label: "Events without support", Filter: models.EventFilter{Unassigned: true}},
			all,
		}
	case models.RoleManagement:
		return []View{
			{Label: "Events without support", Filter: models.EventFilter{Unassigned: true}},
			{Label: "Events with support", Filter: models.EventFilter{Assigned: true}},
			upcoming,
			past,
			all,
		}
	default:
		return []View{
			{Label: "My clients' events", Filter: models.EventFilter{CommercialID: &id}},
			upcoming,
			past,
			all,
		}
	}
}
