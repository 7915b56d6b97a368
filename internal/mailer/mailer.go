package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"contacts-platform/internal/config"
)

// Message is a fully-formed outbound notification. Callers hand the
// dispatcher a complete confirmation/reset link; no token logic lives here.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]string
}

// Dispatcher delivers outbound email. Delivery is fire-and-forget from the
// caller's perspective: failures are logged, never retried here, and never
// fail the request that triggered them.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

const (
	TemplateConfirmEmail  = "confirm_email"
	TemplateResetPassword = "reset_password"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "confirm_email"}}<html><body>
<p>Hello {{.Username}},</p>
<p>Please confirm your email address by following the link below:</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>The link is valid for 24 hours. If you did not sign up, ignore this message.</p>
</body></html>{{end}}

{{define "reset_password"}}<html><body>
<p>Hello {{.Username}},</p>
<p>A password reset was requested for your account. Follow the link below to choose a new password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link is valid for 1 hour. If you did not request a reset, ignore this message.</p>
</body></html>{{end}}
`))

// ConfirmationMessage builds the signup confirmation email.
func ConfirmationMessage(email, username, link string) Message {
	return Message{
		To:       email,
		Subject:  "Confirm your email",
		Template: TemplateConfirmEmail,
		Data:     map[string]string{"Username": username, "Link": link},
	}
}

// ResetMessage builds the password reset email.
func ResetMessage(email, username, link string) Message {
	return Message{
		To:       email,
		Subject:  "Reset your password",
		Template: TemplateResetPassword,
		Data:     map[string]string{"Username": username, "Link": link},
	}
}

// SMTPDispatcher delivers mail over plain SMTP. There is no queueing or
// retrying; the surrounding service treats dispatch as best-effort.
type SMTPDispatcher struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPDispatcher(cfg config.MailConfig) *SMTPDispatcher {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPDispatcher{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
	}
}

func (d *SMTPDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := render(msg)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", d.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.Write(body)

	if err := smtp.SendMail(d.addr, d.auth, d.from, []string{msg.To}, b.Bytes()); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func render(msg Message) ([]byte, error) {
	var b bytes.Buffer
	if err := templates.ExecuteTemplate(&b, msg.Template, msg.Data); err != nil {
		return nil, fmt.Errorf("render template %q: %w", msg.Template, err)
	}
	return b.Bytes(), nil
}
