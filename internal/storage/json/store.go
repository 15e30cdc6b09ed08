// Package json is a flat-file Store adapter: the whole persisted state is
// one JSON document, rewritten atomically on every write. Adapted from the
// teacher's storage.JSONStore (same load/save/atomic-rewrite shape,
// trimmed from its task/plan/habit/overtime schema down to this domain's
// templates, instances, plans, and settings).
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dayplan/dayplan/internal/models"
	"github.com/dayplan/dayplan/internal/store"
)

// document is the on-disk shape, one per user. Keyed maps rather than slices
// so SaveTemplate-on-an-existing-id is a plain overwrite, matching the
// teacher's map[string]models.Task approach.
type document struct {
	Version   int                          `json:"version"`
	Settings  models.Settings              `json:"settings"`
	Templates map[string]models.Template   `json:"templates"`
	Instances map[string]models.Instance   `json:"instances"` // keyed by instance id
	Schedules map[string]models.SleepSchedule `json:"dailySchedules"` // keyed by date
	Plans     map[string]models.PlanResult `json:"plans"`     // keyed by date
}

func newDocument() *document {
	return &document{
		Version:   1,
		Templates: make(map[string]models.Template),
		Instances: make(map[string]models.Instance),
		Schedules: make(map[string]models.SleepSchedule),
		Plans:     make(map[string]models.PlanResult),
	}
}

// Store is a single-user, single-file JSON-backed store.Store.
type Store struct {
	path string
	doc  *document
}

// New returns a Store that will read/write path. It does not touch disk
// until Init or Load is called.
func New(path string) *Store {
	return &Store{path: path}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}
	s.doc = newDocument()
	s.doc.Settings = models.Settings{
		DayStart:                "07:00",
		DayEnd:                  "23:00",
		DefaultWakeTime:         "07:00",
		DefaultSleepTime:        "23:00",
		DesiredSleepDurationMin: 8 * 60,
		Timezone:                "Local",
		MaxSuggestions:          3,
	}
	return s.save()
}

func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'dayplan init' first")
		}
		return fmt.Errorf("read storage: %w", err)
	}
	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("parse storage: %w", err)
	}
	if doc.Templates == nil {
		doc.Templates = make(map[string]models.Template)
	}
	if doc.Instances == nil {
		doc.Instances = make(map[string]models.Instance)
	}
	if doc.Schedules == nil {
		doc.Schedules = make(map[string]models.SleepSchedule)
	}
	if doc.Plans == nil {
		doc.Plans = make(map[string]models.PlanResult)
	}
	s.doc = doc
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) GetSettings(_ string) (models.Settings, error) {
	if s.doc == nil {
		return models.Settings{}, fmt.Errorf("storage not loaded")
	}
	return s.doc.Settings, nil
}

func (s *Store) SaveSettings(_ string, settings models.Settings) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Settings = settings
	return s.save()
}

func (s *Store) GetTemplates(_ string) ([]models.Template, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	out := make([]models.Template, 0, len(s.doc.Templates))
	for _, t := range s.doc.Templates {
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetTemplate(_ string, id string) (models.Template, error) {
	if s.doc == nil {
		return models.Template{}, fmt.Errorf("storage not loaded")
	}
	t, ok := s.doc.Templates[id]
	if !ok {
		return models.Template{}, fmt.Errorf("template not found: %s", id)
	}
	return t, nil
}

func (s *Store) SaveTemplate(_ string, t models.Template) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Templates[t.ID] = t
	return s.save()
}

func (s *Store) DeleteTemplate(_ string, id string) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.doc.Templates[id]; !ok {
		return fmt.Errorf("template not found: %s", id)
	}
	delete(s.doc.Templates, id)
	return s.save()
}

func (s *Store) GetInstancesForDate(_ string, date string) ([]models.Instance, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	var out []models.Instance
	for _, inst := range s.doc.Instances {
		if inst.Date == date {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (s *Store) SaveInstance(_ string, inst models.Instance) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Instances[inst.ID] = inst
	return s.save()
}

func (s *Store) DeleteInstance(_ string, id string) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	delete(s.doc.Instances, id)
	return s.save()
}

func (s *Store) GetDailySchedule(_ string, date string) (*models.SleepSchedule, bool, error) {
	if s.doc == nil {
		return nil, false, fmt.Errorf("storage not loaded")
	}
	sleep, ok := s.doc.Schedules[date]
	if !ok {
		return nil, false, nil
	}
	return &sleep, true, nil
}

func (s *Store) SaveDailySchedule(_ string, date string, sleep models.SleepSchedule) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Schedules[date] = sleep
	return s.save()
}

func (s *Store) SavePlan(_ string, date string, result models.PlanResult) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Plans[date] = result
	return s.save()
}

func (s *Store) GetPlan(_ string, date string) (models.PlanResult, error) {
	if s.doc == nil {
		return models.PlanResult{}, fmt.Errorf("storage not loaded")
	}
	p, ok := s.doc.Plans[date]
	if !ok {
		return models.PlanResult{}, fmt.Errorf("no plan for %s", date)
	}
	return p, nil
}

// CountOccurrences scans persisted instances; a JSON store only ever holds
// materialized instances, so this is exact only over the range they were
// actually written for.
func (s *Store) CountOccurrences(templateID string, upTo string) (int, error) {
	if s.doc == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	count := 0
	for _, inst := range s.doc.Instances {
		if inst.TemplateID == templateID && inst.Date <= upTo && inst.Status != models.StatusSkipped {
			count++
		}
	}
	return count, nil
}
