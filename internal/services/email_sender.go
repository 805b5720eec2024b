package services

// EmailSender delivers one plain-text email.
type EmailSender interface {
	Send(to string, subject string, body string) error
}
