package service

import (
	"context"
	"testing"
	"time"

	"taskhive/internal/models"
)

func TestNotifierDispatchPersists(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", "User")

	err := env.notifier.Dispatch(user.ID, models.NotificationProjectJoined,
		"Welcome", "You joined Apollo", map[string]string{"project_id": "1"})
	if err != nil {
		t.Fatalf("Dispatch() returned error: %v", err)
	}

	notifications, err := env.notifications.ListByUser(user.ID, 10)
	if err != nil {
		t.Fatalf("ListByUser() returned error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notification count = %d, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationProjectJoined || n.Title != "Welcome" {
		t.Errorf("stored notification = %+v", n)
	}
	if n.Metadata["project_id"] != "1" {
		t.Errorf("metadata = %v, want project_id=1", n.Metadata)
	}
	if n.IsRead() {
		t.Error("new notification should be unread")
	}
}

func TestNotifierEmailDelivery(t *testing.T) {
	env := newTestEnv(t)

	env.notifier.SendEmail(Email{To: "a@example.com", Subject: "hello"})
	env.notifier.SendEmail(Email{To: "a@example.com", Subject: "again"})
	env.drainEmails()

	if got := env.transport.sentTo("a@example.com"); got != 2 {
		t.Errorf("delivered %d emails, want 2", got)
	}
}

func TestNotifierEmailFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	env.transport.sendErr = errTransportDown

	// Must not panic or block; the failure is logged by the worker
	env.notifier.SendEmail(Email{To: "a@example.com", Subject: "doomed"})
	env.drainEmails()

	if got := env.transport.sentTo("a@example.com"); got != 0 {
		t.Errorf("delivered %d emails, want 0", got)
	}
}

func TestNotifierQueueFullDropsInsteadOfBlocking(t *testing.T) {
	// A transport that never finishes keeps the worker busy so the queue
	// can actually fill up
	blocked := make(chan struct{})
	transport := &blockingTransport{release: blocked}
	n := NewNotifier(nil, transport, 1)

	n.SendEmail(Email{To: "first@example.com"})  // picked up by the worker
	n.SendEmail(Email{To: "second@example.com"}) // sits in the queue

	done := make(chan struct{})
	go func() {
		n.SendEmail(Email{To: "third@example.com"}) // queue full: dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SendEmail blocked on a full queue")
	}

	close(blocked)
	n.Close()
}

type blockingTransport struct {
	release chan struct{}
}

func (b *blockingTransport) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	<-b.release
	return "blocked-message-id", nil
}
