package stream

import (
	"encoding/json"
	"testing"
	"time"

	"backend-presence/internal/session"
)

func receive(t *testing.T, c *Client) presenceEvent {
	t.Helper()
	select {
	case msg := <-c.Send:
		var ev presenceEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for event")
		return presenceEvent{}
	}
}

func TestPresenceSinkSessionEvents(t *testing.T) {
	hub := NewHub(nil)
	sink := NewPresenceSink(hub)

	locClient := hub.Register("loc-1")
	defer hub.Unregister(locClient)
	allClient := hub.Register(TopicAll)
	defer hub.Unregister(allClient)

	sess := session.Session{ID: "sess-1", LocationID: "loc-1", StartedAt: time.Now()}
	sink.SessionStarted(sess)

	got := receive(t, locClient)
	if got.Type != "session_started" || got.SessionID != "sess-1" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Session == nil || got.Session.LocationID != "loc-1" {
		t.Fatalf("expected embedded session: %+v", got)
	}

	all := receive(t, allClient)
	if all.Type != "session_started" {
		t.Fatalf("expected fan-out to all topic: %+v", all)
	}

	sink.SessionEnded(sess)
	if got := receive(t, locClient); got.Type != "session_ended" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestPresenceSinkSampleEvents(t *testing.T) {
	hub := NewHub(nil)
	sink := NewPresenceSink(hub)

	allClient := hub.Register(TopicAll)
	defer hub.Unregister(allClient)

	sink.SamplesFlushed("sess-1", 6)
	got := receive(t, allClient)
	if got.Type != "samples_flushed" || got.Count != 6 {
		t.Fatalf("unexpected event: %+v", got)
	}

	sink.SamplesDropped("sess-1", 6)
	got = receive(t, allClient)
	if got.Type != "samples_dropped" || got.Count != 6 {
		t.Fatalf("unexpected event: %+v", got)
	}
}
