package mail

import (
	"strings"
	"testing"
	"time"
)

func TestComposeSubstitutesPlaceholders(t *testing.T) {
	sender := NewSMTPSender("smtp.test", 587, "billing@test", "Billing Desk", "")
	msg := Message{
		Recipient:     "client@test",
		ClientName:    "Acme Ltd",
		InvoiceNumber: "INV/2025/000042",
		DueDate:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	payload, err := sender.compose(msg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	body := string(payload)
	for _, want := range []string{
		"To: client@test",
		"Subject: Invoice INV/2025/000042",
		"Dear Acme Ltd",
		"due on 01 Jun 2025",
		"Billing Desk",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestComposeReceiptSubjectAndTemplate(t *testing.T) {
	sender := NewSMTPSender("smtp.test", 587, "billing@test", "Billing Desk", "")
	msg := Message{
		Recipient:     "client@test",
		ClientName:    "Acme Ltd",
		InvoiceNumber: "RCPT/2025/000042",
		Receipt:       true,
		Template:      "Hi {{ClientName}}, receipt {{InvoiceNumber}} attached.",
		Attachments:   []Attachment{{Filename: "Receipt_42.pdf", Content: []byte("%PDF")}},
	}
	payload, err := sender.compose(msg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	body := string(payload)
	if !strings.Contains(body, "Subject: Payment Receipt RCPT/2025/000042") {
		t.Error("receipt subject missing")
	}
	if !strings.Contains(body, "Hi Acme Ltd, receipt RCPT/2025/000042 attached.") {
		t.Error("custom template not substituted")
	}
	if !strings.Contains(body, `filename="Receipt_42.pdf"`) {
		t.Error("attachment disposition missing")
	}
	if !strings.Contains(body, "Content-Transfer-Encoding: base64") {
		t.Error("attachment not base64 encoded")
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	sender := NewSMTPSender("smtp.test", 587, "billing@test", "Billing Desk", "")
	if _, err := sender.Send(t.Context(), Message{}); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}
