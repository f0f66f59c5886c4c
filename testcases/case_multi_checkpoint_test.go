package testcases

import (
	"context"
	"testing"

	"github.com/tbxark/slotagent/agent"
)

// TestMultipleSessionCheckpoints keeps two conversations apart through
// checkpoint and restore.
func TestMultipleSessionCheckpoints(t *testing.T) {
	t.Parallel()
	sessions := agent.NewMemorySessionStore()
	a := NewTestAgent(t, WithSessions(sessions))

	alice := agent.WithSessionKey(context.Background(), "alice")
	bob := agent.WithSessionKey(context.Background(), "bob")
	a.Say(alice, "first_name", "Alice")
	a.Say(bob, "first_name", "Bob", "phone", "555-999-0000")

	checkpoints := map[string][]byte{}
	for _, ctx := range []context.Context{alice, bob} {
		key, _ := agent.SessionKeyFromContext(ctx)
		sess, err := sessions.Get(ctx)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		data, err := a.Flow.Checkpoint(ctx, sess)
		if err != nil {
			t.Fatalf("checkpoint %s: %v", key, err)
		}
		checkpoints[key] = data
	}

	restoredStore := agent.NewMemorySessionStore()
	b := NewTestAgent(t, WithSessions(restoredStore))
	for key, data := range checkpoints {
		sess, err := b.Flow.Restore(context.Background(), data)
		if err != nil {
			t.Fatalf("restore %s: %v", key, err)
		}
		if err := restoredStore.Put(agent.WithSessionKey(context.Background(), key), sess); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	keys, err := restoredStore.Keys(context.Background())
	if err != nil || len(keys) != 2 {
		t.Fatalf("keys = %v, err = %v", keys, err)
	}
	if got := b.Values(alice)["first_name"]; got != "Alice" {
		t.Errorf("alice first_name = %v", got)
	}
	if _, ok := b.Values(alice)["phone"]; ok {
		t.Error("alice must not see bob's phone")
	}
	if got := b.Values(bob)["phone"]; got != "555-999-0000" {
		t.Errorf("bob phone = %v", got)
	}

	reply, _ := b.Say(alice, "email", "alice@example.com")
	if reply != "And a phone number we can reach you at?" {
		t.Errorf("alice reply = %q", reply)
	}
}
