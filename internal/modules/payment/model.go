// README: Payment dispute aggregate and confirmation results.
package payment

import (
	"time"

	"viax/internal/types"
)

type DisputeStatus string

const (
	DisputePending  DisputeStatus = "pending"
	DisputeResolved DisputeStatus = "resolved"
)

// Dispute records one payment disagreement: the client claims the cash was
// handed over, the driver claims it was not. One per trip at a time.
type Dispute struct {
	ID       int64
	TripID   types.ID
	ClientID types.ID
	DriverID types.ID

	// Confirmation values frozen at creation time.
	ClientConfirmedPaid     bool
	DriverConfirmedReceived bool

	Status     DisputeStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// ConfirmationResult reports the combined state after one side confirms.
type ConfirmationResult struct {
	ClientConfirmsPaid     string `json:"client_confirms_paid"`
	DriverConfirmsReceived string `json:"driver_confirms_received"`
	DisputeOpened          bool   `json:"dispute_opened"`
	DisputeID              *int64 `json:"dispute_id,omitempty"`
}

// SuspensionStatus is what the session layer reads to gate app access.
type SuspensionStatus struct {
	Suspended bool   `json:"suspended"`
	DisputeID *int64 `json:"dispute_id,omitempty"`
}
