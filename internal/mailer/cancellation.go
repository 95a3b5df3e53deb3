package mailer

import (
	"fmt"
	"time"

	"github.com/gobarber/gobarber/internal/datefmt"
)

// CancellationPayload is the event body published on
// gobarber.appointment.canceled.v1.
type CancellationPayload struct {
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"date"`
	CanceledAt    string `json:"canceled_at"`
	Provider      struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"provider"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (p CancellationPayload) Valid() bool {
	if p.AppointmentID <= 0 || p.Provider.Email == "" {
		return false
	}
	_, err := time.Parse(time.RFC3339, p.Date)
	return err == nil
}

// CancellationMail renders the message sent to the provider when a client
// cancels.
func CancellationMail(p CancellationPayload) (subject, body string) {
	date, _ := time.Parse(time.RFC3339, p.Date)
	subject = "Agendamento cancelado"
	body = fmt.Sprintf(
		"Olá, %s!\r\n\r\nO agendamento de %s para %s foi cancelado.\r\nO horário está novamente disponível para novos agendamentos.\r\n",
		p.Provider.Name,
		p.User.Name,
		datefmt.Long(date),
	)
	return subject, body
}
