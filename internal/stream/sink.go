package stream

import (
	"encoding/json"
	"log"
	"time"

	"backend-presence/internal/session"
)

// PresenceSink publishes session transitions and sample activity to the hub.
// Session events fan out to the location topic and to TopicAll; sample counts
// only to TopicAll.
type PresenceSink struct {
	hub *Hub
}

type presenceEvent struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id,omitempty"`
	Count     int              `json:"count,omitempty"`
	Session   *session.Session `json:"session,omitempty"`
	At        time.Time        `json:"at"`
}

func NewPresenceSink(hub *Hub) *PresenceSink {
	return &PresenceSink{hub: hub}
}

func (s *PresenceSink) SessionStarted(sess session.Session) {
	s.publishSession("session_started", sess)
}

func (s *PresenceSink) SessionEnded(sess session.Session) {
	s.publishSession("session_ended", sess)
}

func (s *PresenceSink) SamplesFlushed(sessionID string, count int) {
	s.publish(TopicAll, presenceEvent{
		Type:      "samples_flushed",
		SessionID: sessionID,
		Count:     count,
		At:        time.Now(),
	})
}

func (s *PresenceSink) SamplesDropped(sessionID string, count int) {
	s.publish(TopicAll, presenceEvent{
		Type:      "samples_dropped",
		SessionID: sessionID,
		Count:     count,
		At:        time.Now(),
	})
}

func (s *PresenceSink) publishSession(kind string, sess session.Session) {
	event := presenceEvent{
		Type:      kind,
		SessionID: sess.ID,
		Session:   &sess,
		At:        time.Now(),
	}
	s.publish(sess.LocationID, event)
	s.publish(TopicAll, event)
}

func (s *PresenceSink) publish(topic string, event presenceEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("presence event marshal error: %v", err)
		return
	}
	s.hub.Broadcast(topic, payload)
}
