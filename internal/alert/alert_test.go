package alert

import (
	"context"
	"testing"
)

func TestRecorderCollectsInOrder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Notify(ctx, Notification{Severity: SeverityInfo, Text: "first"})
	r.Notify(ctx, Notification{Severity: SeverityFraud, Text: "second"})

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Text != "first" || all[1].Text != "second" {
		t.Errorf("order wrong: %v", all)
	}
}

func TestRecorderBySeverity(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Notify(ctx, Notification{Severity: SeverityError, Text: "boom"})
	r.Notify(ctx, Notification{Severity: SeverityFraud, Text: "fraud!"})
	r.Notify(ctx, Notification{Severity: SeverityFraud, Text: "again"})

	frauds := r.BySeverity(SeverityFraud)
	if len(frauds) != 2 {
		t.Errorf("fraud notifications = %d, want 2", len(frauds))
	}
	if got := r.BySeverity(SeveritySuccess); len(got) != 0 {
		t.Errorf("unexpected success notifications: %v", got)
	}
}

func TestFanoutForwardsToAll(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	f := Fanout{a, b}

	f.Notify(context.Background(), Notification{Severity: SeverityInfo, Text: "hello"})

	if len(a.All()) != 1 || len(b.All()) != 1 {
		t.Error("fanout should reach every sink")
	}
}
