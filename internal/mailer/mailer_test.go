package mailer

import (
	"strings"
	"testing"
)

func TestConfirmationMessageRenders(t *testing.T) {
	msg := ConfirmationMessage("alice@example.com", "alice", "http://localhost/api/auth/confirmed_email/tok123")

	if msg.To != "alice@example.com" || msg.Template != TemplateConfirmEmail {
		t.Fatalf("unexpected message: %+v", msg)
	}

	body, err := render(msg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(body)
	if !strings.Contains(out, "Hello alice") {
		t.Fatalf("username missing: %s", out)
	}
	if !strings.Contains(out, `href="http://localhost/api/auth/confirmed_email/tok123"`) {
		t.Fatalf("link missing: %s", out)
	}
	if !strings.Contains(out, "24 hours") {
		t.Fatalf("validity note missing: %s", out)
	}
}

func TestResetMessageRenders(t *testing.T) {
	msg := ResetMessage("bob@example.com", "bob", "http://localhost/api/auth/reset_password/tok456")

	body, err := render(msg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(body)
	if !strings.Contains(out, "tok456") {
		t.Fatalf("link missing: %s", out)
	}
	if !strings.Contains(out, "1 hour") {
		t.Fatalf("validity note missing: %s", out)
	}
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	if _, err := render(Message{Template: "no_such_template"}); err == nil {
		t.Fatalf("expected error")
	}
}
