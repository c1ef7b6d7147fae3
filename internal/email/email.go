// Package email sends registration confirmation links over SMTP, or collects
// them on a localhost page in self-contained mode so the flow works without a
// mail server.
package email

import (
	"fmt"
	"net/smtp"
	"net/url"

	"dalchat-backend/internal/models"
)

var smtpServer string
var smtpAddress string
var username string
var password string
var fullServerAddress string
var selfContained bool

func Setup(cfg *models.ConfigFile, _fullServerAddress string) {
	smtpServer = cfg.SmtpServer
	smtpAddress = fmt.Sprintf("%s:%d", cfg.SmtpServer, cfg.SmtpPort)
	username = cfg.SmtpUsername
	password = cfg.SmtpPassword
	fullServerAddress = _fullServerAddress
	selfContained = cfg.SelfContained

	if selfContained {
		go confirmationPageListener()
	}
}

func sendEmail(recipients []string, subject string, message string) error {
	auth := smtp.PlainAuth("", username, password, smtpServer)

	msg := fmt.Appendf(nil, "To: %s\r\n", recipients[0])
	msg = fmt.Append(msg, "MIME-version: 1.0;\r\n")
	msg = fmt.Append(msg, "Content-Type: text/html; charset=\"UTF-8\";\r\n")
	msg = fmt.Appendf(msg, "Subject: %s\r\n", subject)
	msg = fmt.Append(msg, "\r\n")
	msg = fmt.Appendf(msg, "%s\r\n", message)

	return smtp.SendMail(smtpAddress, auth, username, recipients, msg)
}

func SendEmailConfirmation(email string, displayName string, confirmToken string) error {
	link := fmt.Sprintf("%s/api/email/confirm?token=%s", fullServerAddress, url.QueryEscape(confirmToken))

	if selfContained {
		return storeConfirmLink(email, link)
	}

	subject := "Confirm your DALChat registration"
	message := fmt.Sprintf(`
	<html>
		<body>
			<h2>Hello %s!</h2>
			<a href="%s">Confirm your email by clicking here</a>
		</body>
	</html>`,
		displayName, link)

	return sendEmail([]string{email}, subject, message)
}
