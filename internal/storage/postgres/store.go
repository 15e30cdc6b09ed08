// Package postgres is a lib/pq-backed Store adapter for multi-device sync
// deployments. Uses a search_path-in-connection-string trick so the app's
// tables live in their own schema rather than polluting "public", plus a
// no-embedded-credentials guard on the connection string. Kept lean — no
// migration runner — since these five tables are simple enough to
// bootstrap with one inline CREATE SCHEMA/CREATE TABLE statement.
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/dayplan/dayplan/internal/constants"
	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/store"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

const schema = `
CREATE SCHEMA IF NOT EXISTS ` + constants.AppName + `;
CREATE TABLE IF NOT EXISTS ` + constants.AppName + `.settings (
	user_id TEXT PRIMARY KEY,
	payload JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS ` + constants.AppName + `.templates (
	user_id TEXT NOT NULL,
	id TEXT NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE TABLE IF NOT EXISTS ` + constants.AppName + `.instances (
	user_id TEXT NOT NULL,
	id TEXT NOT NULL,
	date TEXT NOT NULL,
	template_id TEXT NOT NULL,
	status TEXT NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (user_id, id)
);
CREATE INDEX IF NOT EXISTS idx_instances_date ON ` + constants.AppName + `.instances (user_id, date);
CREATE TABLE IF NOT EXISTS ` + constants.AppName + `.daily_schedules (
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (user_id, date)
);
CREATE TABLE IF NOT EXISTS ` + constants.AppName + `.plans (
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (user_id, date)
);
`

// Store is a lib/pq-backed store.Store.
type Store struct {
	connStr string
	db      *sql.DB
}

// New returns a Store for connStr, rewriting it to carry an explicit
// search_path so the app's tables resolve without schema-qualifying every
// query by hand.
func New(connStr string) *Store {
	s := &Store{connStr: connStr}
	s.ensureSearchPath()
	return s
}

var _ store.Store = (*Store)(nil)

func (s *Store) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
		return
	}
	if !strings.Contains(s.connStr, "search_path=") {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

// ValidateConnStr rejects connection strings carrying an embedded password,
// forcing credentials through a keyring/env var instead of persisted
// config.
func ValidateConnStr(connStr string) error {
	if connStr == "" {
		return ErrInvalidConnectionString
	}
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, hasPassword := u.User.Password(); hasPassword {
			return ErrEmbeddedCredentials
		}
		return nil
	}
	if strings.Contains(connStr, "password=") {
		return ErrEmbeddedCredentials
	}
	return nil
}

func (s *Store) Init() error {
	db, err := sql.Open("postgres", s.connStr)
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
	return s.Init()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetSettings(userID string) (models.Settings, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM settings WHERE user_id = $1`, userID).Scan(&payload)
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
	if err := json.Unmarshal(payload, &out); err != nil {
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
		INSERT INTO settings (user_id, payload) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET payload = excluded.payload`, userID, payload)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) GetTemplates(userID string) ([]models.Template, error) {
	rows, err := s.db.Query(`SELECT payload FROM templates WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get templates: %w", err)
	}
	defer rows.Close()
	var out []models.Template
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var t models.Template
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTemplate(userID, id string) (models.Template, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM templates WHERE user_id = $1 AND id = $2`, userID, id).Scan(&payload)
	if err != nil {
		return models.Template{}, fmt.Errorf("template not found: %s", id)
	}
	var t models.Template
	if err := json.Unmarshal(payload, &t); err != nil {
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
		INSERT INTO templates (user_id, id, payload) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, id) DO UPDATE SET payload = excluded.payload`, userID, t.ID, payload)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *Store) DeleteTemplate(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template not found: %s", id)
	}
	return nil
}

func (s *Store) GetInstancesForDate(userID, date string) ([]models.Instance, error) {
	rows, err := s.db.Query(`SELECT payload FROM instances WHERE user_id = $1 AND date = $2`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get instances: %w", err)
	}
	defer rows.Close()
	var out []models.Instance
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var inst models.Instance
		if err := json.Unmarshal(payload, &inst); err != nil {
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
		INSERT INTO instances (user_id, id, date, template_id, status, payload) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, id) DO UPDATE SET date = excluded.date, template_id = excluded.template_id,
			status = excluded.status, payload = excluded.payload`,
		userID, inst.ID, inst.Date, inst.TemplateID, string(inst.Status), payload)
	if err != nil {
		return fmt.Errorf("save instance: %w", err)
	}
	return nil
}

func (s *Store) DeleteInstance(userID, id string) error {
	_, err := s.db.Exec(`DELETE FROM instances WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	return nil
}

func (s *Store) GetDailySchedule(userID, date string) (*models.SleepSchedule, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM daily_schedules WHERE user_id = $1 AND date = $2`, userID, date).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get daily schedule: %w", err)
	}
	var sleep models.SleepSchedule
	if err := json.Unmarshal(payload, &sleep); err != nil {
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
		INSERT INTO daily_schedules (user_id, date, payload) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET payload = excluded.payload`, userID, date, payload)
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
		INSERT INTO plans (user_id, date, payload) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET payload = excluded.payload`, userID, date, payload)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(userID, date string) (models.PlanResult, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM plans WHERE user_id = $1 AND date = $2`, userID, date).Scan(&payload)
	if err != nil {
		return models.PlanResult{}, fmt.Errorf("no plan for %s", date)
	}
	var out models.PlanResult
	if err := json.Unmarshal(payload, &out); err != nil {
		return models.PlanResult{}, fmt.Errorf("decode plan: %w", err)
	}
	return out, nil
}

func (s *Store) CountOccurrences(templateID string, upTo string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM instances
		WHERE template_id = $1 AND date <= $2 AND status != $3`,
		templateID, upTo, string(models.StatusSkipped)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count occurrences: %w", err)
	}
	return count, nil
}
