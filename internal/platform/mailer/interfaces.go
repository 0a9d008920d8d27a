package mailer

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendOTP(email, code string, purpose string) error
	SendNotification(email, subject, body string) error
}
