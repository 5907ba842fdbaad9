// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/ekrili/internal/config"
)

// EmailChannel implements delivery via SMTP.
type EmailChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
	timeout  time.Duration
}

// NewEmailChannel creates an SMTP channel from the notify settings.
func NewEmailChannel(cfg *config.NotifyConfig) (*EmailChannel, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("invalid SMTP port: %d", cfg.SMTPPort)
	}
	if err := ValidateEmail(cfg.SMTPFrom); err != nil {
		return nil, fmt.Errorf("invalid SMTP from address: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "Ekrili"
	}

	return &EmailChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		fromName: fromName,
		useTLS:   cfg.SMTPUseTLS,
		timeout:  timeout,
	}, nil
}

// Name returns the channel identifier.
func (c *EmailChannel) Name() string {
	return "email"
}

// Send delivers msg via SMTP.
func (c *EmailChannel) Send(ctx context.Context, msg *Message) error {
	if err := ValidateEmail(msg.To); err != nil {
		return &DeliveryError{Code: ErrorCodeInvalidRecipient, Err: err}
	}

	body, err := c.buildMessage(msg)
	if err != nil {
		return &DeliveryError{Code: ErrorCodeUnknown, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sendSMTP(ctx, msg.To, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.DeadlineExceeded) {
			return &DeliveryError{Code: ErrorCodeTimeout, Err: err}
		}
		return &DeliveryError{Code: classifyEmailError(err), Err: err}
	}
	return nil
}

// buildMessage constructs the MIME message with headers. Both parts are
// quoted-printable encoded; non-ASCII header text is Q-encoded.
func (c *EmailChannel) buildMessage(m *Message) ([]byte, error) {
	var msg bytes.Buffer

	fmt.Fprintf(&msg, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", c.fromName), c.from)
	if m.ToName != "" {
		fmt.Fprintf(&msg, "To: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", m.ToName), m.To)
	} else {
		fmt.Fprintf(&msg, "To: %s\r\n", m.To)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	if m.ID != "" {
		fmt.Fprintf(&msg, "X-Ekrili-Notification-ID: %s\r\n", m.ID)
	}

	hasHTML := m.BodyHTML != ""
	hasText := m.BodyText != ""

	switch {
	case hasHTML && hasText:
		boundary := fmt.Sprintf("ekrili_%d", time.Now().UnixNano())
		fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		if err := writePart(&msg, "text/plain", m.BodyText); err != nil {
			return nil, err
		}
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		if err := writePart(&msg, "text/html", m.BodyHTML); err != nil {
			return nil, err
		}
		fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	case hasHTML:
		if err := writePart(&msg, "text/html", m.BodyHTML); err != nil {
			return nil, err
		}
	default:
		if err := writePart(&msg, "text/plain", m.BodyText); err != nil {
			return nil, err
		}
	}

	return msg.Bytes(), nil
}

func writePart(buf *bytes.Buffer, contentType, body string) error {
	fmt.Fprintf(buf, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	qp := quotedprintable.NewWriter(buf)
	if _, err := qp.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to encode %s part: %w", contentType, err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("failed to encode %s part: %w", contentType, err)
	}
	buf.WriteString("\r\n")
	return nil
}

// sendSMTP sends the message via SMTP.
func (c *EmailChannel) sendSMTP(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	dialer := &net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline) //nolint:errcheck // Dial succeeded, deadline is advisory
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if c.useTLS {
		tlsConfig := &tls.Config{
			ServerName: c.host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if c.username != "" && c.password != "" {
		auth := smtp.PlainAuth("", c.username, c.password, c.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closed; a failed QUIT is ignored.
	_ = client.Quit() //nolint:errcheck // message already accepted
	return nil
}

// classifyEmailError classifies an error into an error code.
func classifyEmailError(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "authentication") || strings.Contains(errStr, "auth"):
		return ErrorCodeAuthFailed
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return ErrorCodeTimeout
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect"):
		return ErrorCodeConnectionFailed
	case strings.Contains(errStr, "recipient") || strings.Contains(errStr, "mailbox"):
		return ErrorCodeRecipientNotFound
	case strings.Contains(errStr, "rate") || strings.Contains(errStr, "limit"):
		return ErrorCodeRateLimited
	case strings.Contains(errStr, "too large") || strings.Contains(errStr, "size"):
		return ErrorCodeContentTooLarge
	case strings.Contains(errStr, " 4"):
		// 4xx SMTP replies are temporary by definition
		return ErrorCodeServerError
	}
	return ErrorCodeUnknown
}
