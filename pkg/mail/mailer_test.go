package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

type fakeSMTPClient struct {
	from       string
	recipients []string
	data       bytes.Buffer
	quit       bool
	failRcpt   error
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c *fakeSMTPClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeSMTPClient) Rcpt(to string) error {
	if c.failRcpt != nil {
		return c.failRcpt
	}
	c.recipients = append(c.recipients, to)
	return nil
}
func (c *fakeSMTPClient) Data() (io.WriteCloser, error)   { return nopWriteCloser{&c.data}, nil }
func (c *fakeSMTPClient) Quit() error                     { c.quit = true; return nil }
func (c *fakeSMTPClient) Close() error                    { return nil }
func (c *fakeSMTPClient) StartTLS(*tls.Config) error      { return nil }
func (c *fakeSMTPClient) Auth(smtp.Auth) error            { return nil }
func (c *fakeSMTPClient) Extension(string) (bool, string) { return false, "" }

func newTestMailer(t *testing.T, client *fakeSMTPClient) *smtpMailer {
	t.Helper()

	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		From:     "no-reply@example.com",
		FromName: "Bazaar",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	sm := mailer.(*smtpMailer)
	sm.dialFn = func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
		local, remote := net.Pipe()
		t.Cleanup(func() { _ = remote.Close() })
		return local, client, nil
	}
	sm.authFn = func(smtpClient, SMTPSettings) error { return nil }
	return sm
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
	})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	_, err = NewSMTPMailer(SMTPSettings{
		Enabled:    true,
		Host:       "smtp.example.com",
		Port:       25,
		Encryption: "rot13",
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported encryption") {
		t.Fatalf("expected encryption validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}

	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"test@example.com"},
		Subject: "Test",
		Body:    "Hello",
	})
	if !errors.Is(err, ErrSMTPDisabled) {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func TestSMTPMailerDefaults(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	sm, ok := mailer.(*smtpMailer)
	if !ok {
		t.Fatalf("expected smtpMailer type")
	}

	if sm.cfg.Timeout != 10*time.Second {
		t.Fatalf("expected timeout to be 10s, got %v", sm.cfg.Timeout)
	}
	if sm.cfg.Encryption != EncryptionStartTLS {
		t.Fatalf("expected starttls default, got %q", sm.cfg.Encryption)
	}
}

func TestSMTPMailerSendsMultipartMessage(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(t, client)

	err := mailer.Send(context.Background(), Message{
		To:       []string{"buyer@example.com", "buyer@example.com"},
		Subject:  "Verify",
		Body:     "Your code is 123456",
		HTMLBody: "<p>Your code is <strong>123456</strong></p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if client.from != "no-reply@example.com" {
		t.Fatalf("unexpected envelope sender %q", client.from)
	}
	if len(client.recipients) != 1 {
		t.Fatalf("expected deduplicated recipients, got %v", client.recipients)
	}
	if !client.quit {
		t.Fatal("expected QUIT to be issued")
	}

	payload := client.data.String()
	for _, want := range []string{
		`From: "Bazaar" <no-reply@example.com>`,
		"Content-Type: multipart/alternative",
		"text/plain; charset=UTF-8",
		"text/html; charset=UTF-8",
		"Your code is 123456",
		"<strong>123456</strong>",
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("expected payload to contain %q, got %q", want, payload)
		}
	}
}

func TestSMTPMailerPropagatesRcptFailure(t *testing.T) {
	client := &fakeSMTPClient{failRcpt: errors.New("mailbox unavailable")}
	mailer := newTestMailer(t, client)

	err := mailer.Send(context.Background(), Message{
		To:   []string{"buyer@example.com"},
		Body: "hi",
	})
	if err == nil || !strings.Contains(err.Error(), "rcpt to") {
		t.Fatalf("expected rcpt error, got %v", err)
	}
}

func TestFormatMessagePlain(t *testing.T) {
	content, err := formatMessage("from@example.com", []string{"to@example.com"}, Message{
		Subject: "Subject\r\nBreak",
		Body:    "Body",
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "From: from@example.com") {
		t.Fatalf("expected from header, got %q", text)
	}
	if !strings.Contains(text, "Subject: Subject  Break") {
		t.Fatalf("expected sanitised subject, got %q", text)
	}
	if !strings.Contains(text, "Content-Type: text/plain") {
		t.Fatalf("expected plain content type, got %q", text)
	}
	if !strings.HasSuffix(text, "Body") {
		t.Fatalf("expected body suffix, got %q", text)
	}
}

func TestSMTPMailerSendRequiresRecipients(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"   ", "\t"},
		Subject: "No recipients",
		Body:    "Body",
	})
	if err == nil || !strings.Contains(err.Error(), "at least one recipient") {
		t.Fatalf("expected missing recipient error, got %v", err)
	}
}

func TestSMTPMailerSendValidatesAddresses(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		From: "invalid-from",
		To:   []string{"user@example.com"},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid from address") {
		t.Fatalf("expected invalid from error, got %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To: []string{"user@example.com", "bad-address"},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid recipient address") {
		t.Fatalf("expected invalid recipient error, got %v", err)
	}
}

func TestUniqueAddresses(t *testing.T) {
	addresses := []string{"alice@example.com", "bob@example.com", " alice@example.com ", "", "bob@example.com"}
	result := uniqueAddresses(addresses)
	if len(result) != 2 {
		t.Fatalf("expected 2 unique addresses, got %d: %v", len(result), result)
	}
	if result[0] != "alice@example.com" || result[1] != "bob@example.com" {
		t.Fatalf("unexpected result order/content: %v", result)
	}
}
