package models

// InstanceStatus is the lifecycle state of a per-date materialization of a
// template.
type InstanceStatus string

const (
	StatusPending    InstanceStatus = "pending"
	StatusCompleted  InstanceStatus = "completed"
	StatusSkipped    InstanceStatus = "skipped"
	StatusPostponed  InstanceStatus = "postponed"
	StatusIncomplete InstanceStatus = "incomplete"
)

// Instance is a per-date materialization of a Template, snapshotting the
// fields the scheduler reasons about so a later template edit does not
// silently rewrite history.
type Instance struct {
	ID         string
	TemplateID string
	Date       string // YYYY-MM-DD

	TaskName        string
	DurationMinutes int
	Priority        int
	IsMandatory     bool
	DependsOn       []string

	Status InstanceStatus

	ScheduledTime  string // HH:MM, empty for pure flexible instances not yet placed
	ActualDuration *int
	CompletedAt    string // RFC3339, only meaningful when Status == completed
}
