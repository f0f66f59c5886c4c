package main

import (
	"time"

	"github.com/tbxark/slotagent/calendar"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/types"
)

func openSlots(now time.Time) *calendar.Calendar {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var slots []time.Time
	for d := 1; d <= 5; d++ {
		date := day.AddDate(0, 0, d)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		slots = append(slots, date.Add(9*time.Hour), date.Add(11*time.Hour), date.Add(14*time.Hour+30*time.Minute))
	}
	return calendar.New(slots...)
}

func newBookingSpec(conf *Config) (*form.Spec, error) {
	booking := calendar.Booking{Calendar: openSlots(time.Now())}
	return form.NewSpec("book_appointment", []form.Field{
		{
			Name:            "first_name",
			Type:            types.FieldString,
			Title:           "First name",
			Question:        "Hi! May I have your first name?",
			Acknowledgement: "Nice to meet you, {{first_name}}.",
			Validators: []form.Validator{
				form.StartsWithLetter("A first name must start with a letter."),
				form.Capitalize(),
			},
		},
		{
			Name:     "email",
			Type:     types.FieldEmail,
			Title:    "Email",
			Question: "Which email address should the confirmation go to?",
			Validators: []form.Validator{
				form.Lower(),
			},
		},
		{
			Name:          "phone",
			Type:          types.FieldString,
			Title:         "Phone",
			Question:      "What phone number can we reach you at?",
			CountFailures: true,
			Validators: []form.Validator{
				form.Matches(`^\d{3}-\d{3}-\d{4}$`, "Phone numbers look like 555-123-4567."),
			},
		},
		{
			Name:        "availability",
			Type:        types.FieldDateRange,
			Title:       "Availability",
			Description: "When the customer is available, as an ISO date time or a {start, end, grain} object.",
			Question:    "When would you like to come in?",
		},
		{Name: "appointment", Type: types.FieldDateRange},
		{
			Name:            "appointment_time",
			Type:            types.FieldString,
			Acknowledgement: "I have you down for {{appointment_time}}.",
		},
		{Name: "matching_slots_in_human_friendly_format", Type: types.FieldString, Excluded: true},
		{
			Name:     "confirmation",
			Type:     types.FieldBool,
			Question: "Shall I confirm the appointment on {{appointment_time}}?",
			Excluded: true,
			Validators: []form.Validator{
				form.MustBeTrue("No problem, what would you like to change?"),
			},
		},
	},
		form.WithDescription("Book a consultation slot with the clinic"),
		form.WithRules(booking.Rule()),
		form.WithErrorThreshold(conf.ErrorThreshold),
	)
}
