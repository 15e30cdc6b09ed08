// Package store defines the ports the planner core consumes and the events
// the UI/CLI layer emits, covering the four entities this domain needs:
// templates, instances, plans, and settings. Adapters
// (internal/storage/json, internal/storage/sqlite,
// internal/storage/postgres) implement Store; nothing in the planner core
// imports an adapter directly.
package store

import "github.com/dayplan/dayplan/internal/models"

// Store is the persistence port consumed by the core. The planner treats
// synchronous and asynchronous implementations uniformly — Go's blocking
// method calls model both; an adapter backed by a remote database simply
// blocks on I/O inside the call.
type Store interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings(userID string) (models.Settings, error)
	SaveSettings(userID string, settings models.Settings) error

	// Templates
	GetTemplates(userID string) ([]models.Template, error)
	GetTemplate(userID, id string) (models.Template, error)
	SaveTemplate(userID string, t models.Template) error
	DeleteTemplate(userID, id string) error

	// Instances
	GetInstancesForDate(userID, date string) ([]models.Instance, error)
	SaveInstance(userID string, inst models.Instance) error
	DeleteInstance(userID, id string) error

	// Sleep overrides — a per-date exception to the user's default sleep
	// schedule (e.g. staying up late on a Friday).
	GetDailySchedule(userID, date string) (*models.SleepSchedule, bool, error)
	SaveDailySchedule(userID, date string, sleep models.SleepSchedule) error

	// Plans — the persisted result of a planner run, keyed by date.
	SavePlan(userID, date string, result models.PlanResult) error
	GetPlan(userID, date string) (models.PlanResult, error)

	// CountOccurrences supports endAfterOccurrences recurrence rules: the
	// number of instances of templateID dated on or before upTo (YYYY-MM-DD)
	// that were not skipped. Implementations that never materialize
	// instances ahead of time may return 0, relying on the recurrence
	// engine's documented unbounded-without-a-store default.
	CountOccurrences(templateID, upTo string) (int, error)
}
