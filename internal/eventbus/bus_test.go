package eventbus

import (
	"testing"
)

type recorder struct {
	name string
	seen *[]string
}

func (r recorder) HandleEvent(e Event) {
	*r.seen = append(*r.seen, r.name+":"+string(e.Signal))
}

func TestPublishRegistrationOrder(t *testing.T) {
	t.Parallel()
	b := New()

	var seen []string
	b.Subscribe(TaskSuccess, recorder{name: "a", seen: &seen})
	b.Subscribe(TaskSuccess, recorder{name: "b", seen: &seen})
	b.Subscribe(TaskSuccess, recorder{name: "c", seen: &seen})

	b.Publish(Event{Signal: TaskSuccess})

	want := []string{"a:task-success", "b:task-success", "c:task-success"}
	if len(seen) != len(want) {
		t.Fatalf("got %d deliveries, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("delivery %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestPublishSignalIsolation(t *testing.T) {
	t.Parallel()
	b := New()

	var seen []string
	b.Subscribe(TaskSuccess, recorder{name: "ok", seen: &seen})
	b.Subscribe(TaskFailure, recorder{name: "bad", seen: &seen})

	b.Publish(Event{Signal: TaskFailure})

	if len(seen) != 1 || seen[0] != "bad:task-failure" {
		t.Fatalf("unexpected deliveries: %v", seen)
	}
}

func TestPublishSetsTime(t *testing.T) {
	t.Parallel()
	b := New()

	var got Event
	b.Subscribe(InitComplete, HandlerFunc(func(e Event) { got = e }))
	b.Publish(Event{Signal: InitComplete})

	if got.Time.IsZero() {
		t.Fatal("event time not set")
	}
}

func TestSubscribeDuringPublishNotInvoked(t *testing.T) {
	t.Parallel()
	b := New()

	var calls int
	b.Subscribe(InitComplete, HandlerFunc(func(Event) {
		calls++
		b.Subscribe(InitComplete, HandlerFunc(func(Event) { calls += 100 }))
	}))
	b.Publish(Event{Signal: InitComplete})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (late subscriber must wait for next publish)", calls)
	}
}
