// Package mailer sends forward notifications over SMTP. Recipients are
// passed explicitly per call; there is no process-wide recipient state.
package mailer

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"math/rand"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/commwatch/commwatch/internal/config"
	"github.com/commwatch/commwatch/internal/logger"
)

// Attachment is a file carried inline in the message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is a single outbound mail.
type Message struct {
	Recipients  []string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Sender interface {
	Send(msg Message) error
}

type Mailer struct {
	config  *config.Smtp
	timeout time.Duration
	auth    smtp.Auth
}

var _ Sender = (*Mailer)(nil)

func New(cfg *config.Smtp, timeout time.Duration) *Mailer {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server)
	return &Mailer{config: cfg, timeout: timeout, auth: auth}
}

// Send delivers the message to all recipients in a single SMTP session.
// When SMTP is not configured the message is dropped with a log line,
// matching first-run deployments without a mail account.
func (m *Mailer) Send(msg Message) error {
	if m.config.Username == "" {
		logger.Log.Info("mail not configured, skipping notification", "subject", msg.Subject)
		return nil
	}
	if len(msg.Recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	raw, err := m.buildMessage(msg)
	if err != nil {
		return err
	}
	address := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)

	// Port 465 = implicit TLS, otherwise STARTTLS
	if m.config.Port == 465 {
		return m.sendImplicitTLS(address, msg.Recipients, raw)
	}
	return m.sendSTARTTLS(address, msg.Recipients, raw)
}

// sendImplicitTLS sends mail over a connection that is TLS from the start (port 465).
func (m *Mailer) sendImplicitTLS(address string, recipients []string, raw []byte) error {
	tlsConfig := &tls.Config{ServerName: m.config.Server}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: m.timeout}, "tcp", address, tlsConfig)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server (implicit TLS)", "address", address, "error", err)
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(m.timeout))

	client, err := smtp.NewClient(conn, m.config.Server)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	return m.sendViaClient(client, recipients, raw)
}

// sendSTARTTLS sends mail by upgrading a plain connection to TLS (port 587).
func (m *Mailer) sendSTARTTLS(address string, recipients []string, raw []byte) error {
	conn, err := net.DialTimeout("tcp", address, m.timeout)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(m.timeout))

	client, err := smtp.NewClient(conn, m.config.Server)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: m.config.Server}
	if err = client.StartTLS(tlsConfig); err != nil {
		logger.Log.Error("failed to start TLS", "error", err)
		return err
	}

	return m.sendViaClient(client, recipients, raw)
}

// sendViaClient performs auth, sets sender/recipients, and sends the message body.
func (m *Mailer) sendViaClient(client *smtp.Client, recipients []string, raw []byte) error {
	if err := client.Auth(m.auth); err != nil {
		logger.Log.Error("SMTP authentication failed", "error", err)
		return err
	}

	if err := client.Mail(m.from()); err != nil {
		logger.Log.Error("failed to set sender", "error", err)
		return err
	}

	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			logger.Log.Error("failed to set recipient", "recipient", rcpt, "error", err)
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		logger.Log.Error("failed to get data writer", "error", err)
		return err
	}

	if _, err = w.Write(raw); err != nil {
		logger.Log.Error("failed to write message", "error", err)
		return err
	}

	if err = w.Close(); err != nil {
		logger.Log.Error("failed to close data writer", "error", err)
		return err
	}

	return client.Quit()
}

func (m *Mailer) from() string {
	if m.config.From != "" {
		return m.config.From
	}
	return m.config.Username
}

func generateMessageID(domain string) string {
	t := time.Now().UnixNano()
	pid := rand.Int63()
	return fmt.Sprintf("<%d.%d@%s>", t, pid, domain)
}

func (m *Mailer) buildMessage(msg Message) ([]byte, error) {
	encodedSubject := mime.QEncoding.Encode("utf-8", msg.Subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", m.config.SenderName)

	msgID := generateMessageID(m.config.Server)
	date := time.Now().Format(time.RFC1123Z)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "Message-ID: %s\r\n", msgID)
	fmt.Fprintf(&buf, "Date: %s\r\n", date)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", encodedSenderName, m.from())
	fmt.Fprintf(&buf, "Subject: %s\r\n", encodedSubject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", `text/plain; charset="utf-8"`)
	textPart, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(msg.Body)); err != nil {
		return nil, fmt.Errorf("failed to write text part: %w", err)
	}

	for _, att := range msg.Attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/octet-stream")
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(att.Content)
		// RFC 2045 line length limit
		for len(encoded) > 0 {
			n := 76
			if len(encoded) < n {
				n = len(encoded)
			}
			if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:n]); err != nil {
				return nil, fmt.Errorf("failed to write attachment part: %w", err)
			}
			encoded = encoded[n:]
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}

	return buf.Bytes(), nil
}
