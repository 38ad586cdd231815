package enum

// ── Order lifecycle (owned by the backend; the terminal only echoes it) ──

const (
	OrderStatusPending    = "Pending"
	OrderStatusInProgress = "In Progress"
	OrderStatusReady      = "Ready"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// ── Table state (best-effort secondary to the order) ──

const (
	TableStatusAvailable = "Available"
	TableStatusBooked    = "Booked"
)

// ── Payment ──

const (
	PaymentMethodCash = "Cash"
)

// ── Dashboard chart periods ──

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)
