package handlers

// AppHandlers holds every handler of the application.
type AppHandlers struct {
	PaymentHandler *PaymentHandler
	WebhookHandler *WebhookHandler
	AuthHandler    *AuthHandler
	AdminHandler   *AdminHandler
}
