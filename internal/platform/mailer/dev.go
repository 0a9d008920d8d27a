package mailer

import "github.com/fixline/homemart/pkg/logger"

// DevMailer prints emails to the log instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"subject", subject,
		"text", text,
	)
	return "dev", nil
}

func (d *DevMailer) SendOTP(email, code, purpose string) error {
	logger.Info("[DEV MAIL] one-time code",
		"to", email,
		"purpose", purpose,
		"code", code,
	)
	return nil
}

func (d *DevMailer) SendNotification(email, subject, body string) error {
	logger.Info("[DEV MAIL] notification",
		"to", email,
		"subject", subject,
		"body", body,
	)
	return nil
}
