// Package sqlite is a database/sql-backed Store adapter using
// modernc.org/sqlite (no cgo required). Five tables, each holding one
// JSON-encoded payload column plus the indexed fields the core queries by.
// A fully normalized schema buys nothing here: nothing outside this
// package ever issues a raw SQL query against these tables, so the only
// requirement is "look up by id/date cheaply," which an indexed payload
// column satisfies without any migration machinery.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	user_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS templates (
	user_id TEXT NOT NULL,
	id TEXT NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE TABLE IF NOT EXISTS instances (
	user_id TEXT NOT NULL,
	id TEXT NOT NULL,
	date TEXT NOT NULL,
	template_id TEXT NOT NULL,
	status TEXT NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE INDEX IF NOT EXISTS idx_instances_date ON instances (user_id, date);
CREATE TABLE IF NOT EXISTS daily_schedules (
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (user_id, date)
);
CREATE TABLE IF NOT EXISTS plans (
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (user_id, date)
);
`

// Store is a modernc.org/sqlite-backed store.Store.
type Store struct {
	path string
	db   *sql.DB
}

// New returns a Store that will open path on Init/Load.
func New(path string) *Store {
	return &Store{path: path}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("run schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'dayplan init' first")
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("run schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetSettings(userID string) (models.Settings, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM settings WHERE user_id = ?`, userID).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.Settings{
			DayStart: "07:00", DayEnd: "23:00",
			DefaultWakeTime: "07:00", DefaultSleepTime: "23:00",
			DesiredSleepDurationMin: 8 * 60, Timezone: "Local", MaxSuggestions: 3,
		}, nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	var out models.Settings
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return models.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

func (s *Store) SaveSettings(userID string, settings models.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (user_id, payload) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload`, userID, string(payload))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) GetTemplates(userID string) ([]models.Template, error) {
	rows, err := s.db.Query(`SELECT payload FROM templates WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("get templates: %w", err)
	}
	defer rows.Close()
	var out []models.Template
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var t models.Template
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTemplate(userID, id string) (models.Template, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM templates WHERE user_id = ? AND id = ?`, userID, id).Scan(&payload)
	if err != nil {
		return models.Template{}, fmt.Errorf("template not found: %s", id)
	}
	var t models.Template
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return models.Template{}, fmt.Errorf("decode template: %w", err)
	}
	return t, nil
}

func (s *Store) SaveTemplate(userID string, t models.Template) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO templates (user_id, id, payload) VALUES (?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET payload = excluded.payload`, userID, t.ID, string(payload))
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *Store) DeleteTemplate(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template not found: %s", id)
	}
	return nil
}

func (s *Store) GetInstancesForDate(userID, date string) ([]models.Instance, error) {
	rows, err := s.db.Query(`SELECT payload FROM instances WHERE user_id = ? AND date = ?`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get instances: %w", err)
	}
	defer rows.Close()
	var out []models.Instance
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var inst models.Instance
		if err := json.Unmarshal([]byte(payload), &inst); err != nil {
			return nil, fmt.Errorf("decode instance: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (s *Store) SaveInstance(userID string, inst models.Instance) error {
	payload, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("encode instance: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO instances (user_id, id, date, template_id, status, payload) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET date = excluded.date, template_id = excluded.template_id,
			status = excluded.status, payload = excluded.payload`,
		userID, inst.ID, inst.Date, inst.TemplateID, string(inst.Status), string(payload))
	if err != nil {
		return fmt.Errorf("save instance: %w", err)
	}
	return nil
}

func (s *Store) DeleteInstance(userID, id string) error {
	_, err := s.db.Exec(`DELETE FROM instances WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	return nil
}

func (s *Store) GetDailySchedule(userID, date string) (*models.SleepSchedule, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM daily_schedules WHERE user_id = ? AND date = ?`, userID, date).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get daily schedule: %w", err)
	}
	var sleep models.SleepSchedule
	if err := json.Unmarshal([]byte(payload), &sleep); err != nil {
		return nil, false, fmt.Errorf("decode daily schedule: %w", err)
	}
	return &sleep, true, nil
}

func (s *Store) SaveDailySchedule(userID, date string, sleep models.SleepSchedule) error {
	payload, err := json.Marshal(sleep)
	if err != nil {
		return fmt.Errorf("encode daily schedule: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO daily_schedules (user_id, date, payload) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET payload = excluded.payload`, userID, date, string(payload))
	if err != nil {
		return fmt.Errorf("save daily schedule: %w", err)
	}
	return nil
}

func (s *Store) SavePlan(userID, date string, result models.PlanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO plans (user_id, date, payload) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET payload = excluded.payload`, userID, date, string(payload))
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(userID, date string) (models.PlanResult, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM plans WHERE user_id = ? AND date = ?`, userID, date).Scan(&payload)
	if err != nil {
		return models.PlanResult{}, fmt.Errorf("no plan for %s", date)
	}
	var out models.PlanResult
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return models.PlanResult{}, fmt.Errorf("decode plan: %w", err)
	}
	return out, nil
}

func (s *Store) CountOccurrences(templateID string, upTo string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM instances
		WHERE template_id = ? AND date <= ? AND status != ?`,
		templateID, upTo, string(models.StatusSkipped)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count occurrences: %w", err)
	}
	return count, nil
}
