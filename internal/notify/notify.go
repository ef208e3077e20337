// Package notify delivers outbound e-mail about issue and project activity.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"
)

// Message is a plain-text e-mail to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier accepts messages for best-effort delivery. Notify never blocks on the network.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
	Close()
}

// Sender performs the actual delivery of a single message.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPSender{dialer: d, from: from}
}

// Send dials the relay and delivers msg.
func (s *SMTPSender) Send(msg Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Dispatcher queues messages on a buffered channel and delivers them from one worker.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the delivery worker. size is the queue capacity.
func NewDispatcher(sender Sender, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Message, size),
		done:   make(chan struct{}),
	}

	go d.worker()

	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for msg := range d.queue {
		if err := d.sender.Send(msg); err != nil {
			log.Printf("notify: %v", err)
		}
	}
}

// Notify enqueues msg. Messages without a recipient, or arriving when the queue is
// full or closed, are dropped and logged.
func (d *Dispatcher) Notify(_ context.Context, msg Message) {
	if msg.To == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("notify: dispatcher closed, dropping %q to %s", msg.Subject, msg.To)
		return
	}

	select {
	case d.queue <- msg:
	default:
		log.Printf("notify: queue full, dropping %q to %s", msg.Subject, msg.To)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

// Noop discards every message. It is used when no SMTP relay is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Message) {}

func (Noop) Close() {}
