package config

const (
	DefaultTimeZone = "Asia/Jakarta"

	// Escalation sweep: check expired revision windows every five minutes.
	DefaultEscalationSchedule = "*/5 * * * *"
	EscalationBatchSize       = 100

	// Revision window granted on return when the approver sets no deadline.
	DefaultRevisionWindowHours = 48
)
