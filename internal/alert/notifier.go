package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/leakspider/leakspider/internal/model"
)

// ErrNoCredentials is returned when Notify is called with nothing to report.
var ErrNoCredentials = errors.New("no credentials to notify about")

// Notifier delivers an alert about discovered credentials.
//
// Design decision: An interface so the crawl loop does not care whether
// alerts go to SMTP, a log, or a test double. Implementations must treat
// the credentials as read-only.
type Notifier interface {
	// Notify sends one alert covering the given credentials.
	Notify(ctx context.Context, credentials []model.Credential) error
}

// MailNotifier sends alerts over SMTP.
//
// Design decision: net/smtp from the standard library. It speaks plain
// SMTP with optional PLAIN auth and STARTTLS, which is everything an
// alert mail needs.
type MailNotifier struct {
	// host is the SMTP server hostname.
	host string

	// port is the SMTP server port.
	port int

	// sender is the From address, also used as the auth username.
	sender string

	// password is the SMTP auth secret. Empty disables authentication.
	password string

	// receiver is the To address.
	receiver string

	// sendFunc performs the actual delivery. Tests replace it.
	sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailNotifier creates an SMTP notifier.
func NewMailNotifier(host string, port int, sender, password, receiver string) *MailNotifier {
	return &MailNotifier{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		receiver: receiver,
		sendFunc: smtp.SendMail,
	}
}

// Notify sends one alert email covering all given credentials.
func (m *MailNotifier) Notify(ctx context.Context, credentials []model.Credential) error {
	if len(credentials) == 0 {
		return ErrNoCredentials
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.password != "" {
		auth = smtp.PlainAuth("", m.sender, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	msg := m.buildMessage(credentials)
	if err := m.sendFunc(addr, auth, m.sender, []string{m.receiver}, msg); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	return nil
}

// buildMessage renders the alert as an RFC 5322 message.
func (m *MailNotifier) buildMessage(credentials []model.Credential) []byte {
	subject := fmt.Sprintf("leakspider: %d leaked credential(s) found", len(credentials))
	if len(credentials) == 1 {
		subject = fmt.Sprintf("leakspider: leaked credential found for %s", credentials[0].Identifier)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", m.sender)
	fmt.Fprintf(&body, "To: %s\r\n", m.receiver)
	fmt.Fprintf(&body, "Subject: %s\r\n", subject)
	fmt.Fprintf(&body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	body.WriteString("\r\n")

	body.WriteString("The following leaked credentials were discovered:\r\n\r\n")
	for _, cred := range credentials {
		fmt.Fprintf(&body, "Identifier:  %s\r\n", cred.Identifier)
		fmt.Fprintf(&body, "Secret hash: %s\r\n", cred.SecretHash)
		fmt.Fprintf(&body, "Source:      %s\r\n", cred.SourceURL)
		fmt.Fprintf(&body, "Matcher:     %s\r\n", cred.Matcher)
		fmt.Fprintf(&body, "Found at:    %s\r\n\r\n", cred.FoundAt.Format(time.RFC3339))
	}
	body.WriteString("Secrets are stored as one-way hashes; the plaintext was not retained.\r\n")

	return []byte(body.String())
}

// LogNotifier writes alerts to the structured log instead of sending mail.
// Used when no mail configuration is present or alerts are disabled on the
// command line.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs instead of mailing.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs one entry per credential.
func (l *LogNotifier) Notify(_ context.Context, credentials []model.Credential) error {
	if len(credentials) == 0 {
		return ErrNoCredentials
	}
	for _, cred := range credentials {
		l.logger.Info("leaked credential found",
			slog.String("identifier", cred.Identifier),
			slog.String("secret_hash", cred.SecretHash),
			slog.String("source", cred.SourceURL),
			slog.String("matcher", cred.Matcher))
	}
	return nil
}
