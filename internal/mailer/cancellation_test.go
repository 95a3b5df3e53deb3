package mailer

import (
	"encoding/json"
	"strings"
	"testing"
)

func samplePayload() CancellationPayload {
	var p CancellationPayload
	raw := `{
		"appointment_id": 42,
		"date": "2026-01-10T14:00:00Z",
		"canceled_at": "2026-01-10T10:30:00Z",
		"provider": {"name": "Cecilia Barber", "email": "cecilia@example.com"},
		"user": {"name": "Diego"}
	}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		panic(err)
	}
	return p
}

func TestCancellationPayloadValid(t *testing.T) {
	p := samplePayload()
	if !p.Valid() {
		t.Fatal("sample payload should be valid")
	}

	missing := p
	missing.Provider.Email = ""
	if missing.Valid() {
		t.Error("payload without provider email should be invalid")
	}

	badID := p
	badID.AppointmentID = 0
	if badID.Valid() {
		t.Error("payload without appointment id should be invalid")
	}

	badDate := p
	badDate.Date = "10/01/2026"
	if badDate.Valid() {
		t.Error("payload with non RFC3339 date should be invalid")
	}
}

func TestCancellationMail(t *testing.T) {
	subject, body := CancellationMail(samplePayload())

	if subject != "Agendamento cancelado" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{
		"Olá, Cecilia Barber!",
		"O agendamento de Diego",
		"dia 10 de janeiro, às 14:00h",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("equipe@gobarber.local", "cecilia@example.com", "Agendamento cancelado", "corpo")

	headerEnd := strings.Index(msg, "\r\n\r\n")
	if headerEnd < 0 {
		t.Fatalf("message has no header/body separator:\n%s", msg)
	}
	headers := msg[:headerEnd]
	for _, want := range []string{
		"From: equipe@gobarber.local",
		"To: cecilia@example.com",
		"Subject: Agendamento cancelado",
		"Content-Type: text/plain; charset=utf-8",
	} {
		if !strings.Contains(headers, want) {
			t.Errorf("headers missing %q", want)
		}
	}
	if !strings.Contains(msg[headerEnd:], "corpo") {
		t.Error("body not carried into message")
	}
}
