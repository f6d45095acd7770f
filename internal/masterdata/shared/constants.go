package shared

const (
	// Record statuses accepted by the status filter.
	StatusActive   = "active"
	StatusInactive = "inactive"

	// Inspection outcomes.
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// Date filter fields shared by dated records.
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
)
