package calendar

import (
	"log/slog"
	"slices"
	"time"

	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/types"
)

const (
	humanFriendlyLayout = "Monday 02 at 15:04"
	appointmentLayout   = "Monday, 02 January 2006, 15:04"
)

// Calendar is a sorted set of bookable slot start times.
type Calendar struct {
	slots []time.Time
}

func New(slots ...time.Time) *Calendar {
	sorted := slices.Clone(slots)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	return &Calendar{slots: sorted}
}

func (c *Calendar) Slots() []time.Time {
	return c.slots
}

// Match returns the slots starting within [r.Start, r.End).
func (c *Calendar) Match(r types.DateRange) []time.Time {
	var out []time.Time
	for _, slot := range c.slots {
		if !slot.Before(r.Start) && slot.Before(r.End) {
			out = append(out, slot)
		}
	}
	return out
}

// Upcoming returns at most n slots starting after now.
func (c *Calendar) Upcoming(now time.Time, n int) []time.Time {
	var out []time.Time
	for _, slot := range c.slots {
		if len(out) == n {
			break
		}
		if slot.After(now) {
			out = append(out, slot)
		}
	}
	return out
}

// HumanFriendly formats slots as "Monday 02 at 15:04, Tuesday 03 at 09:00
// or Friday 06 at 11:00".
func HumanFriendly(slots []time.Time) string {
	switch len(slots) {
	case 0:
		return ""
	case 1:
		return slots[0].Format(humanFriendlyLayout)
	}
	out := ""
	for i, slot := range slots {
		switch {
		case i == 0:
		case i == len(slots)-1:
			out += " or "
		default:
			out += ", "
		}
		out += slot.Format(humanFriendlyLayout)
	}
	return out
}

// Booking configures the availability rule. Field names default to the
// booking process names.
type Booking struct {
	Calendar *Calendar

	AvailabilityField    string
	AppointmentField     string
	AppointmentTimeField string
	SuggestionsField     string

	// MinGrain widens narrower availabilities; SlotLength is the length of
	// a booked appointment; MaxBookableGrain is the widest availability that
	// is booked directly when it contains exactly one slot.
	MinGrain         time.Duration
	SlotLength       time.Duration
	MaxBookableGrain time.Duration
	Suggestions      int

	NoMatchMessage string
	ProposeMessage string
	SeveralMessage string
	Now            func() time.Time
	Logger         *slog.Logger
}

func (b Booking) withDefaults() Booking {
	if b.AvailabilityField == "" {
		b.AvailabilityField = "availability"
	}
	if b.AppointmentField == "" {
		b.AppointmentField = "appointment"
	}
	if b.AppointmentTimeField == "" {
		b.AppointmentTimeField = "appointment_time"
	}
	if b.SuggestionsField == "" {
		b.SuggestionsField = "matching_slots_in_human_friendly_format"
	}
	if b.MinGrain == 0 {
		b.MinGrain = 15 * time.Minute
	}
	if b.SlotLength == 0 {
		b.SlotLength = 15 * time.Minute
	}
	if b.MaxBookableGrain == 0 {
		b.MaxBookableGrain = time.Hour
	}
	if b.Suggestions == 0 {
		b.Suggestions = 3
	}
	if b.NoMatchMessage == "" {
		b.NoMatchMessage = "No, unfortunately. But we can offer {{" + b.SuggestionsField + "}}."
	}
	if b.ProposeMessage == "" {
		b.ProposeMessage = "We can propose you a slot on {{" + b.SuggestionsField + "}}. Would that work?"
	}
	if b.SeveralMessage == "" {
		b.SeveralMessage = "We have several slots available: {{" + b.SuggestionsField + "}}. Would that work?"
	}
	if b.Now == nil {
		b.Now = time.Now
	}
	if b.Logger == nil {
		b.Logger = slog.Default()
	}
	return b
}

// Rule matches the availability slot against the calendar. With a single
// match inside a narrow enough window it books the appointment; otherwise
// it drops the availability and leaves suggestions for the next question.
func (b Booking) Rule() form.Rule {
	b = b.withDefaults()
	return func(rc *form.RuleContext) {
		rc.Set(b.SuggestionsField, HumanFriendly(b.Calendar.Upcoming(b.Now(), b.Suggestions)))

		raw, ok := rc.Get(b.AvailabilityField)
		if !ok {
			return
		}
		availability, ok := raw.(types.DateRange)
		if !ok {
			rc.Reject(b.AvailabilityField, b.NoMatchMessage)
			return
		}
		if availability.Grain < b.MinGrain {
			availability = types.DateRange{
				Start: availability.Start,
				End:   availability.Start.Add(b.MinGrain),
				Grain: b.MinGrain,
			}
		}

		matches := b.Calendar.Match(availability)
		b.Logger.Debug("Matched availability", "availability", availability, "slots", len(matches))
		switch {
		case len(matches) == 1 && availability.Grain <= b.MaxBookableGrain:
			slot := matches[0]
			booked := types.DateRange{Start: slot, End: slot.Add(b.SlotLength), Grain: b.SlotLength}
			rc.Set(b.AppointmentField, booked)
			rc.Set(b.AvailabilityField, booked)
			rc.Set(b.AppointmentTimeField, slot.Format(appointmentLayout))
			rc.Set(b.SuggestionsField, HumanFriendly(matches))
		case len(matches) == 1:
			b.clear(rc)
			rc.Set(b.SuggestionsField, HumanFriendly(matches))
			rc.Fail(b.AvailabilityField, b.ProposeMessage)
		case len(matches) > 1:
			b.clear(rc)
			rc.Set(b.SuggestionsField, HumanFriendly(matches))
			rc.Fail(b.AvailabilityField, b.SeveralMessage)
		default:
			b.clear(rc)
			rc.Fail(b.AvailabilityField, b.NoMatchMessage)
		}
	}
}

func (b Booking) clear(rc *form.RuleContext) {
	rc.Delete(b.AvailabilityField)
	rc.Delete(b.AppointmentField)
	rc.Delete(b.AppointmentTimeField)
}
