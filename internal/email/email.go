// Package email sends transactional mail. Delivery normally runs
// through the background task queue so web requests never wait on SMTP.
package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers messages.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers through a real SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)

	addr := s.Host + ":" + s.Port
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	if err := smtp.SendMail(addr, auth, s.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("sending email to %s: %w", msg.To, err)
	}
	return nil
}

// LoggingSender prints instead of sending. The default in development.
type LoggingSender struct{}

func (s *LoggingSender) Send(msg Message) error {
	log.Printf("EMAIL to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}

// FileSender appends each message to a file in the given directory,
// one file per recipient. Used by tests and local smoke runs.
type FileSender struct {
	Dir string
}

func (s *FileSender) Send(msg Message) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	name := strings.NewReplacer("@", "_at_", "/", "_").Replace(msg.To) + ".txt"
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "=== %s ===\nSubject: %s\n\n%s\n\n", time.Now().Format(time.RFC3339), msg.Subject, msg.Body)
	return err
}

// CompositeSender fans out to several senders and returns the first
// error.
type CompositeSender struct {
	Senders []Sender
}

func (s *CompositeSender) Send(msg Message) error {
	for _, sender := range s.Senders {
		if err := sender.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
