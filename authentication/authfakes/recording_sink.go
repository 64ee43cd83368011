package authfakes

import (
	"sync"

	"github.com/extensionhost/authbroker/authentication"
)

var _ authentication.NotificationSink = (*RecordingSink)(nil)

// Notification is one message sent through the sink.
type Notification struct {
	Channel string
	Payload any
}

// RecordingSink captures every notification the broker broadcasts.
type RecordingSink struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewRecordingSink creates an empty sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Send(channel string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Notification{Channel: channel, Payload: payload})
}

// Notifications returns everything sent so far.
func (s *RecordingSink) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

// ProviderUpdates returns the provider ids of every update notification, in
// send order.
func (s *RecordingSink) ProviderUpdates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.Channel != authentication.ProviderUpdateChannel {
			continue
		}
		if update, ok := n.Payload.(authentication.ProviderUpdate); ok {
			ids = append(ids, update.ID)
		}
	}
	return ids
}

// Reset clears the captured notifications.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}
