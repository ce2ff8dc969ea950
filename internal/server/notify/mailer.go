// Package notify sends the transactional emails of the account lifecycle.
package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers account lifecycle emails. Delivery failures are reported
// to the caller, which decides whether they matter.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendCancellation(ctx context.Context, email, name string) error
}

// Sender is the transport a TemplateMailer hands finished messages to.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// TemplateMailer renders the lifecycle messages and passes them to a Sender.
type TemplateMailer struct {
	from   string
	sender Sender
}

func NewTemplateMailer(from string, sender Sender) *TemplateMailer {
	return &TemplateMailer{from: from, sender: sender}
}

func (m *TemplateMailer) SendWelcome(ctx context.Context, email, name string) error {
	return m.sender.Send(ctx, Message{
		From:    m.from,
		To:      email,
		Subject: "Thanks for joining in!",
		Body:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name),
	})
}

func (m *TemplateMailer) SendCancellation(ctx context.Context, email, name string) error {
	return m.sender.Send(ctx, Message{
		From:    m.from,
		To:      email,
		Subject: "Sorry to see you go!",
		Body:    fmt.Sprintf("Goodbye, %s. I hope to see you back sometime soon.", name),
	})
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "notify")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "email", "from", msg.From, "to", msg.To, "subject", msg.Subject)
	return nil
}
