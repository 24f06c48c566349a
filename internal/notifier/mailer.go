package notifier

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"nyumba/internal/config"
)

// Mailer sends account emails asynchronously. Every send happens in its own
// goroutine and failures are only logged: account and profile flows never
// wait on, or fail because of, email delivery.
type Mailer struct {
	smtpHost string
	smtpPort string
	username string
	password string
	from     string
	baseURL  string
	logger   *log.Logger
}

func NewMailer(cfg config.MailConfig, baseURL string, logger *log.Logger) *Mailer {
	if logger == nil {
		logger = log.Default()
	}
	from := cfg.FromAddress
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &Mailer{
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     from,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

func (m *Mailer) SendVerificationEmail(to, name, token string) {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Confirm your email address to finish setting up your account:</p><p><a href=%q>Verify email</a></p>",
		htmlName(name), link,
	)
	m.dispatch(to, "Verify your email", body)
}

func (m *Mailer) SendPasswordResetEmail(to, name, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received a request to reset your password. The link below expires in one hour:</p><p><a href=%q>Reset password</a></p><p>If this wasn't you, ignore this email.</p>",
		htmlName(name), link,
	)
	m.dispatch(to, "Reset your password", body)
}

func (m *Mailer) dispatch(to, subject, body string) {
	if m == nil || m.smtpHost == "" {
		return
	}
	go func() {
		if err := m.send(to, subject, body); err != nil {
			m.logger.Printf("[Mail] send failed | to=%s subject=%q error=%v", to, subject, err)
		}
	}()
}

// send speaks SMTP over implicit TLS (port 465 style).
func (m *Mailer) send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := m.smtpHost + ":" + m.smtpPort
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.smtpHost})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.smtpHost)
	if err != nil {
		return err
	}
	defer client.Quit()

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.smtpHost)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func htmlName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	r := strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")
	return r.Replace(name)
}
