package service

import (
	"context"
	"log"

	"taskhive/internal/repository"
)

// Email is an outbound message queued for best-effort delivery
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Notifier fans out workflow events. The in-app notification insert is
// durable and authoritative for the unread badge; email is a best-effort
// copy sent from a background worker so that a slow or failing mail
// provider can never block or fail a state transition.
type Notifier struct {
	repo      *repository.NotificationRepository
	transport EmailTransport
	queue     chan Email
	done      chan struct{}
}

// NewNotifier creates a notifier and starts its email worker
func NewNotifier(repo *repository.NotificationRepository, transport EmailTransport, queueSize int) *Notifier {
	n := &Notifier{
		repo:      repo,
		transport: transport,
		queue:     make(chan Email, queueSize),
		done:      make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *Notifier) run() {
	defer close(n.done)
	for email := range n.queue {
		if _, err := n.transport.Send(context.Background(), email.To, email.Subject, email.HTMLBody, email.TextBody); err != nil {
			// Email failure is logged and swallowed. The in-app
			// notification and the state transition have already
			// been committed.
			log.Printf("Email send failed (ignored): to=%s, subject=%q: %v", email.To, email.Subject, err)
		}
	}
}

// Dispatch persists an in-app notification. Callers log a returned error
// and continue: the primary state transition has already committed and
// must not be rolled back.
func (n *Notifier) Dispatch(userID int64, ntype, title, message string, metadata map[string]string) error {
	_, err := n.repo.Insert(userID, ntype, title, message, metadata)
	return err
}

// SendEmail enqueues an email for the background worker. If the queue is
// full the message is dropped with a log line rather than blocking the
// caller.
func (n *Notifier) SendEmail(email Email) {
	select {
	case n.queue <- email:
	default:
		log.Printf("Email queue full, dropping message to %s", email.To)
	}
}

// Close stops accepting email and waits for the worker to drain the queue
func (n *Notifier) Close() {
	close(n.queue)
	<-n.done
}
