package email

import (
	"fmt"
	"net/smtp"
)

// Sender delivers account notifications. Delivery is best-effort:
// callers fire it in a goroutine and log failures.
type Sender interface {
	SendConfirmationCode(to, username, code string) error
}

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService(host, port, user, password, from string) *EmailService {
	return &EmailService{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

func (e *EmailService) SendConfirmationCode(to, username, code string) error {
	subject := "Your confirmation code"
	body := fmt.Sprintf(`Hi %s,

Your confirmation code is: %s

Exchange it for an access token at POST /api/v1/auth/token.

If you did not sign up, ignore this email.
`, username, code)

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, to, subject, body)

	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := smtp.SendMail(addr, auth, e.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}
