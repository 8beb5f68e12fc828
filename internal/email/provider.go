package email

// Provider sends transactional mail. The only message this service sends
// is the payment receipt, and sending is always best-effort: a mail
// failure never fails the payment flow that triggered it.
type Provider interface {
	Send(to, subject, htmlBody string) error
}

// NoopProvider is used when SMTP is not configured.
type NoopProvider struct{}

func (NoopProvider) Send(string, string, string) error { return nil }
