// Package notify sends outbound email for the reminder scheduler.
package notify

import (
	"gopkg.in/gomail.v2"

	"github.com/planlane/planlane/pkg/config"
)

type EmailSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewEmailSender() *EmailSender {
	conf := config.GetConfig()
	return &EmailSender{
		host:     conf.SMTP.Host,
		port:     conf.SMTP.Port,
		user:     conf.SMTP.User,
		password: conf.SMTP.Password,
		from:     conf.SMTP.From,
	}
}

func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	return d.DialAndSend(m)
}
