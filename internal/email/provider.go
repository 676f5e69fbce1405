package email

// Provider sends transactional mail.
type Provider interface {
	// Send sends a simple HTML message.
	Send(to, subject, body string) error

	// SendPasswordReset sends the reset link for the given token.
	SendPasswordReset(to, token string) error
}
