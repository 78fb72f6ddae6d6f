package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrEmailNotConfigured = errors.New("email not configured")

type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

type Sender interface {
	Send(ctx context.Context, message *Message) error
	IsConfigured() bool
}

type SmtpConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SmtpSender delivers one message per SMTP session. Sends are throttled so a
// burst of mentions cannot flood the relay.
type SmtpSender struct {
	config  SmtpConfig
	limiter *rate.Limiter
}

func NewSmtpSender(config SmtpConfig) *SmtpSender {
	return &SmtpSender{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(5), 10), // 5 emails per second with burst of 10
	}
}

func (s *SmtpSender) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != 0 && s.config.From != ""
}

func (s *SmtpSender) Send(ctx context.Context, message *Message) error {
	if !s.IsConfigured() {
		return ErrEmailNotConfigured
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email throttled: %w", err)
	}

	from, err := mail.ParseAddress(s.config.From)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}

	body, err := buildMessage(s.config.From, message)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(message.To); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := writer.Write(body); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish email body: %w", err)
	}

	return client.Quit()
}

// buildMessage renders a multipart/alternative message with a plain text
// fallback and the HTML part. Non-ASCII subjects are RFC 2047 encoded.
func buildMessage(from string, message *Message) ([]byte, error) {
	if message.To == "" {
		return nil, errors.New("recipient is required")
	}
	if strings.ContainsAny(message.To+message.Subject, "\r\n") {
		return nil, errors.New("header values must not contain line breaks")
	}

	var parts bytes.Buffer
	writer := multipart.NewWriter(&parts)

	if err := writeQuotedPart(writer, "text/plain; charset=UTF-8", message.TextBody); err != nil {
		return nil, err
	}
	if err := writeQuotedPart(writer, "text/html; charset=UTF-8", message.HTMLBody); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", message.To)
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", message.Subject))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", writer.Boundary())
	fmt.Fprintf(&msg, "\r\n")
	msg.Write(parts.Bytes())

	return msg.Bytes(), nil
}

func writeQuotedPart(writer *multipart.Writer, contentType string, content string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "quoted-printable")

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}

	encoder := quotedprintable.NewWriter(part)
	if _, err := encoder.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to write %s part: %w", contentType, err)
	}

	return encoder.Close()
}
