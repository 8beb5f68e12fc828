package apperrors

import "net/http"

// Factories and predefined errors for the payment and session domains.

// ErrTransactionNotFound wraps a store miss for a transaction lookup.
func ErrTransactionNotFound(id string) *AppError {
	return New(CodeNotFound, "payment", "Transaction not found", http.StatusNotFound).
		WithDetails(map[string]string{"transactionId": id})
}

// ErrSessionNotFound wraps a store miss for a session lookup.
func ErrSessionNotFound(id string) *AppError {
	return New(CodeNotFound, "session", "Session not found", http.StatusNotFound).
		WithDetails(map[string]string{"sessionId": id})
}

// ErrProvider wraps a non-2xx response from a payment provider. The
// provider's status code and body are kept in the details so operators can
// see exactly what the API returned.
func ErrProvider(provider string, statusCode int, body string) *AppError {
	return New(CodeProviderError, "payment", "Payment provider error", http.StatusBadGateway).
		WithDetails(map[string]interface{}{
			"provider":   provider,
			"statusCode": statusCode,
			"body":       body,
		})
}

// ErrTransport wraps a network failure reaching a payment provider.
func ErrTransport(provider string, err error) *AppError {
	return Wrap(err, CodeTransportError, "payment", "Payment provider unreachable", http.StatusInternalServerError).
		WithDetails(map[string]string{"provider": provider})
}

// ErrInvalidPlan is returned when checkout references an unknown plan.
var ErrInvalidPlan = New(
	CodeValidationFailed,
	"payment",
	"Invalid plan ID",
	http.StatusBadRequest,
)

// ErrNoSession is returned when a session-scoped endpoint is called
// without a membership cookie.
var ErrNoSession = New(
	CodeUnauthorized,
	"session",
	"No session found",
	http.StatusUnauthorized,
)

// ErrSessionTokenInvalid is returned when the membership token fails
// signature or expiry checks.
var ErrSessionTokenInvalid = New(
	CodeInvalidToken,
	"session",
	"Invalid or expired session token",
	http.StatusUnauthorized,
)
