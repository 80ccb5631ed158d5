// Package notifier emails a notification for every newly created message.
//
// Invocations follow at-least-once semantics: the same creation may be seen
// twice, and a duplicate notification email is tolerated. No state is shared
// between invocations.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"easychat/contract"
	"easychat/domain"
	"easychat/projection"
)

// Snapshot is the payload view of one creation event. A nil snapshot means
// the event carried no document.
type Snapshot struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// MailerFactory builds the transport with the freshly resolved credential.
// Invoked once per trigger invocation.
type MailerFactory func(credential string) contract.Mailer

// Notifier formats and dispatches one email per created message.
type Notifier struct {
	log        *slog.Logger
	secrets    contract.SecretStore
	newMailer  MailerFactory
	secretName string
	sender     string
	bcc        []string
}

func New(log *slog.Logger, secrets contract.SecretStore, newMailer MailerFactory,
	secretName, sender string, bcc []string) *Notifier {
	return &Notifier{
		log:        log,
		secrets:    secrets,
		newMailer:  newMailer,
		secretName: secretName,
		sender:     sender,
		bcc:        bcc,
	}
}

// HandleCreated is one trigger invocation. It always reports success:
// a missing snapshot is logged and skipped, a transport failure is logged
// and swallowed so the platform does not retry.
func (n *Notifier) HandleCreated(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		n.log.Warn("No snapshot received")
		return nil
	}

	// The credential is re-resolved on every invocation, never cached,
	// so a rotated secret takes effect immediately.
	credential, err := n.secrets.Resolve(ctx, n.secretName)
	if err != nil {
		n.log.Error("mail credential resolution failed", "error", err)
		return nil
	}

	author := snap.Author
	if author == "" {
		author = domain.AnonymousLabel
	}
	when := snap.CreatedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}

	mail := contract.Mail{
		From:    n.sender,
		Bcc:     n.bcc,
		Subject: Subject(author),
		Text:    textBody(author, snap.Body, when),
		HTML:    htmlBody(author, snap.Body, when),
	}

	if err := n.newMailer(credential).Send(ctx, mail); err != nil {
		n.log.Error("notification mail failed", "error", err)
	}
	return nil
}

// Subject is a deterministic function of the author field.
func Subject(author string) string {
	return fmt.Sprintf("EasyChat: new message from %s", author)
}

func textBody(author, body string, when time.Time) string {
	return fmt.Sprintf("%s wrote at %s:\n\n%s\n", author, when.UTC().Format(time.RFC1123), body)
}

// htmlBody escapes the user-controlled fields before interpolating them
// into markup.
func htmlBody(author, body string, when time.Time) string {
	return fmt.Sprintf("<p><strong>%s</strong> wrote at %s:</p><p>%s</p>",
		projection.EscapeHTML(author),
		when.UTC().Format(time.RFC1123),
		projection.BodyHTML(body))
}
