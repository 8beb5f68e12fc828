package provider

import "membership_backend/internal/models"

// TriboPay only pushes webhooks; there is no checkout or status API to
// adapt, so the package carries just its status vocabulary.
const (
	triboPayStatusPaid      = "paid"
	triboPayStatusExpired   = "expired"
	triboPayStatusCancelled = "cancelled"
)

// MapTriboPayStatus maps the provider vocabulary onto the internal enum.
// The mapping is total: unknown statuses stay PENDING.
func MapTriboPayStatus(status string) models.TransactionStatus {
	switch status {
	case triboPayStatusPaid:
		return models.TransactionStatusPaid
	case triboPayStatusExpired:
		return models.TransactionStatusExpired
	case triboPayStatusCancelled:
		return models.TransactionStatusCancelled
	default:
		return models.TransactionStatusPending
	}
}
