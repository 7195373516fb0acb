package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"
	"time"

	"github.com/example/weatheralert/pkg/config"
)

// EmailNotifier sends alert emails over SMTP. When SMTP credentials are not
// configured, delivery degrades to a no-op so the channel can stay enabled
// in development.
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier creates an email notifier.
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

func (e *EmailNotifier) Name() string { return "email" }

var alertBodyTmpl = template.Must(template.New("alert").Parse(`
Weather Alert
=============

Location:  {{.Location}}
Condition: {{.Condition}} {{.Operator}} {{.Threshold}}
Observed:  {{.Value}}
Time:      {{.At.Format "2006-01-02 15:04:05 MST"}}
Event ID:  {{.ID}}

{{.Message}}

---
Weather Alert System
`))

// Notify renders and sends the alert email.
func (e *EmailNotifier) Notify(_ context.Context, ev Event) error {
	if e.config.Username == "" || e.config.Password == "" {
		return nil
	}

	var body bytes.Buffer
	if err := alertBodyTmpl.Execute(&body, ev); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	subject := fmt.Sprintf("⚠ Weather Alert - %s", ev.Location)

	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", e.config.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "\r\n"
	message += body.String()

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)

	if err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
