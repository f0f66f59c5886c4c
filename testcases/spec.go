package testcases

import (
	"time"

	"github.com/tbxark/slotagent/calendar"
	"github.com/tbxark/slotagent/form"
)

// Now is the fixed clock of the booking scenarios, a Wednesday morning.
var Now = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

const bookingYAML = `
name: book_appointment
description: Book a consultation slot with the clinic
fields:
  - name: first_name
    title: First name
    question: May I have your first name?
    acknowledgement: "Thanks {{first_name}}."
    validators:
      - rule: starts_with_letter
        message: A first name must start with a letter.
      - rule: capitalize
  - name: email
    type: email
    question: "What email address should we send the confirmation to, {{first_name}}?"
  - name: phone
    question: And a phone number we can reach you at?
    count_failures: true
    validators:
      - rule: regex
        pattern: '^\d{3}-\d{3}-\d{4}$'
        message: "Phone numbers look like 555-123-4567."
  - name: availability
    type: daterange
    question: When would you like to come in?
  - name: appointment
    type: daterange
  - name: appointment_time
    acknowledgement: "You are booked for {{appointment_time}}."
  - name: matching_slots_in_human_friendly_format
    excluded: true
  - name: confirmation
    type: bool
    question: "Shall I confirm {{appointment_time}}?"
    excluded: true
    validators:
      - rule: must_be_true
        message: What would you like to change?
`

// Calendar returns the open slots of the clinic.
func Calendar() *calendar.Calendar {
	return calendar.New(
		time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
	)
}

// BookingSpec loads the booking process with the calendar rule attached.
func BookingSpec() (*form.Spec, error) {
	booking := calendar.Booking{
		Calendar: Calendar(),
		Now:      func() time.Time { return Now },
	}
	return form.LoadYAML([]byte(bookingYAML), form.WithRules(booking.Rule()))
}
