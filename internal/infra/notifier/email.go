package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain/entity"
)

// DefaultFromEmail is the sender used when DEFAULT_FROM_EMAIL is unset.
const DefaultFromEmail = "noreply@newsapp.com"

const (
	emailPreviewLength = 200
	// maxRecipientsPerMessage caps RCPT commands in one SMTP transaction.
	maxRecipientsPerMessage = 50
)

// EmailConfig configures the SMTP relay.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Addr returns host:port.
func (c EmailConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// deliverFunc sends one raw message to the listed envelope recipients.
type deliverFunc func(ctx context.Context, from string, to []string, msg []byte) error

// EmailNotifier mails the announcement to the source's subscribers.
// Recipients go into the envelope only, so subscribers never see each other.
type EmailNotifier struct {
	config      EmailConfig
	deliver     deliverFunc
	rateLimiter *RateLimiter
	retry       retryPolicy
	now         func() time.Time
}

func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	n := &EmailNotifier{
		config:      config,
		rateLimiter: NewRateLimiter(5.0, 5),
		retry:       retryPolicy{maxAttempts: 3, baseDelay: 2 * time.Second},
		now:         time.Now,
	}
	n.deliver = n.smtpDeliver
	return n
}

// EmailSubject is "New Article: <title>".
func EmailSubject(a *entity.Article) string {
	return "New Article: " + a.Title
}

// EmailBody renders the plain-text notification body.
func EmailBody(a *entity.Announcement) string {
	preview := a.Article.Excerpt(emailPreviewLength)
	if preview != a.Article.Content {
		preview += "..."
	}
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "A new article has been published by %s (%s).\n\n", a.SourceName, a.SourceKind)
	fmt.Fprintf(&b, "Title: %s\n\n", a.Article.Title)
	b.WriteString(preview)
	b.WriteString("\n\n---\nThis is an automated notification from Dispatch.")
	return b.String()
}

// buildMessage assembles an RFC 5322 message with CRLF line endings.
func (e *EmailNotifier) buildMessage(subject, body string) []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	domain := "localhost"
	if at := strings.LastIndex(e.config.From, "@"); at >= 0 {
		domain = e.config.From[at+1:]
	}
	header("From", e.config.From)
	header("To", "undisclosed-recipients:;")
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", e.now().UTC().Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.New().String()+"@"+domain+">")
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")

	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// Announce implements Notifier. Recipients are sent in batches; a failed
// batch does not stop the remaining ones.
func (e *EmailNotifier) Announce(ctx context.Context, a *entity.Announcement) error {
	recipients := a.RecipientEmails()
	requestID := RequestIDFrom(ctx)
	if len(recipients) == 0 {
		slog.Info("No subscribers to email",
			slog.String("request_id", requestID),
			slog.Int64("article_id", a.Article.ID))
		return nil
	}

	msg := e.buildMessage(EmailSubject(a.Article), EmailBody(a))
	if err := e.sendBatches(ctx, a.Article.ID, recipients, msg); err != nil {
		return err
	}
	slog.Info("Sent email notification",
		slog.String("request_id", requestID),
		slog.Int64("article_id", a.Article.ID),
		slog.Int("recipients", len(recipients)))
	return nil
}

// Send mails a plain-text message to every address. The worker uses it for
// the editors' review digest.
func (e *EmailNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	return e.sendBatches(ctx, 0, to, e.buildMessage(subject, body))
}

// sendBatches keeps going after a failed batch and joins the errors.
func (e *EmailNotifier) sendBatches(ctx context.Context, articleID int64, recipients []string, msg []byte) error {
	var errs []error
	for start := 0; start < len(recipients); start += maxRecipientsPerMessage {
		batch := recipients[start:min(start+maxRecipientsPerMessage, len(recipients))]
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		err := withRetry(ctx, "Email", articleID, e.retry, func(ctx context.Context) error {
			return e.deliver(ctx, e.config.From, batch, msg)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// smtpDeliver runs one SMTP transaction, upgrading to TLS when offered.
func (e *EmailNotifier) smtpDeliver(ctx context.Context, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: e.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", e.config.Addr())
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if e.config.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(e.config.Timeout))
	}

	c, err := smtp.NewClient(conn, e.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: e.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if e.config.Username != "" {
		auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
		if err := c.Auth(auth); err != nil {
			return smtpError("auth", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return smtpError("MAIL FROM", err)
	}
	for _, addr := range to {
		if err := c.Rcpt(addr); err != nil {
			return smtpError("RCPT TO", err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return smtpError("DATA", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return smtpError("end of data", err)
	}
	return c.Quit()
}

// smtpError maps 5xx replies to ClientError and 4xx replies to ServerError,
// so permanent failures are not retried.
func smtpError(stage string, err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		msg := fmt.Sprintf("smtp %s: %d %s", stage, tpErr.Code, tpErr.Msg)
		if tpErr.Code >= 500 {
			return &ClientError{StatusCode: tpErr.Code, Message: msg}
		}
		return &ServerError{StatusCode: tpErr.Code, Message: msg}
	}
	return fmt.Errorf("smtp %s: %w", stage, err)
}
