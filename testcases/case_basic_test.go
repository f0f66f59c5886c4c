package testcases

import (
	"context"
	"testing"
	"time"

	"github.com/tbxark/slotagent/dialogue"
	"github.com/tbxark/slotagent/types"
)

// TestBasicBooking walks the booking process from the first question to
// completion, one slot per turn.
func TestBasicBooking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	results := &recordedResults{}
	agent := NewTestAgent(t, WithResultManager(results))

	reply, resp := agent.Say(ctx, "first_name", "nathan")
	if want := "Thanks Nathan.\nWhat email address should we send the confirmation to, Nathan?"; reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
	if resp.NextField != "email" {
		t.Errorf("next field = %q, want email", resp.NextField)
	}

	reply, _ = agent.Say(ctx, "email", "nathan@example.com")
	if reply != "And a phone number we can reach you at?" {
		t.Errorf("unexpected reply after email: %q", reply)
	}

	reply, _ = agent.Say(ctx, "phone", "555-123-4567")
	if reply != "When would you like to come in?" {
		t.Errorf("unexpected reply after phone: %q", reply)
	}

	reply, resp = agent.Say(ctx, "availability", "2024-05-02T14:00:00Z")
	want := "You are booked for Thursday, 02 May 2024, 14:00.\nShall I confirm Thursday, 02 May 2024, 14:00?"
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
	if resp.Phase != types.PhaseCollecting {
		t.Errorf("phase = %s, want collecting until confirmed", resp.Phase)
	}
	t.Logf("update directive: %s", resp.UpdateDirective)

	reply, resp = agent.Say(ctx, "confirmation", true)
	if reply != dialogue.DefaultCompletedMessage {
		t.Errorf("reply = %q, want the completed message", reply)
	}
	if resp.Phase != types.PhaseCompleted || resp.Result == nil {
		t.Fatalf("expected a completed result, got phase %s", resp.Phase)
	}
	if len(results.completed) != 1 {
		t.Fatalf("result manager saw %d completions, want 1", len(results.completed))
	}

	values := results.completed[0].Values
	for _, name := range []string{"confirmation", "matching_slots_in_human_friendly_format"} {
		if _, ok := values[name]; ok {
			t.Errorf("excluded slot %s leaked into the result", name)
		}
	}
	slot := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	booked := types.DateRange{Start: slot, End: slot.Add(15 * time.Minute), Grain: 15 * time.Minute}
	if !types.Equal(values["appointment"], booked) {
		t.Errorf("appointment = %v, want %v", values["appointment"], booked)
	}
	if values["first_name"] != "Nathan" || values["phone"] != "555-123-4567" {
		t.Errorf("unexpected result values %v", values)
	}
}

// TestBasicBookingSingleTurn supplies everything at once.
func TestBasicBookingSingleTurn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	agent := NewTestAgent(t)

	_, resp := agent.Say(ctx,
		"first_name", "ada",
		"email", "ada@example.com",
		"phone", "555-000-1111",
		"availability", "2024-05-03T09:00:00Z",
		"confirmation", "yes",
	)
	if resp.Phase != types.PhaseCompleted {
		t.Fatalf("phase = %s, want completed; errors %v", resp.Phase, resp.Errors)
	}
	if resp.Result.Values["appointment_time"] != "Friday, 03 May 2024, 09:00" {
		t.Errorf("appointment_time = %v", resp.Result.Values["appointment_time"])
	}
}

// TestBookingSeveralSlots asks for a whole day and is offered the slots of
// that day instead of a booking.
func TestBookingSeveralSlots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	agent := NewTestAgent(t)

	day := map[string]any{"start": "2024-05-02T00:00:00Z", "end": "2024-05-02T23:59:59Z", "grain": 86400}
	reply, resp := agent.Say(ctx, "first_name", "Nathan", "availability", day)

	want := "We have several slots available: Thursday 02 at 09:00 or Thursday 02 at 14:00. Would that work?"
	if resp.ErrorDirective != want {
		t.Errorf("error directive = %q, want %q", resp.ErrorDirective, want)
	}
	if _, ok := resp.Collected["availability"]; ok {
		t.Error("availability must be cleared when it matches several slots")
	}
	if agent.Phase(ctx) != types.PhaseCollecting {
		t.Errorf("phase = %s, want collecting", agent.Phase(ctx))
	}
	t.Logf("reply: %s", reply)
}

// TestBookingNoSlot offers the upcoming slots when nothing matches.
func TestBookingNoSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	agent := NewTestAgent(t)

	_, resp := agent.Say(ctx, "availability", "2024-05-06T10:00:00Z")
	want := "No, unfortunately. But we can offer Thursday 02 at 09:00, Thursday 02 at 14:00 or Friday 03 at 09:00."
	if resp.ErrorDirective != want {
		t.Errorf("error directive = %q, want %q", resp.ErrorDirective, want)
	}
	if _, ok := agent.Values(ctx)["availability"]; ok {
		t.Error("unmatched availability must not be stored")
	}
}
