package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
	logx "github.com/agent-poc-v1/server/pkg/logger"
)

const (
	accountFile  = "account_data.json"
	facilityFile = "facility_data.json"
	notesFile    = "notes_data.json"
)

type accountDocument struct {
	AccountOverview []model.AccountOverview `json:"account_overview"`
}

type facilityDocument struct {
	FacilityOverview []model.FacilityOverview `json:"facility_overview"`
}

// Store reads account/facility/notes records from JSON files in a single
// directory. Accounts and facilities are read-only; notes are appendable and
// written back to disk on save.
type Store struct {
	dir string

	mu         sync.RWMutex
	accounts   []model.AccountOverview
	facilities []model.FacilityOverview
	notes      map[string][]model.NoteOverview
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) loadJSON(name string, out any) error {
	path := filepath.Join(s.dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) ensureAccounts() error {
	s.mu.RLock()
	loaded := s.accounts != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accounts != nil {
		return nil
	}
	var doc accountDocument
	if err := s.loadJSON(accountFile, &doc); err != nil {
		return err
	}
	if doc.AccountOverview == nil {
		doc.AccountOverview = []model.AccountOverview{}
	}
	s.accounts = doc.AccountOverview
	return nil
}

func (s *Store) ensureFacilities() error {
	s.mu.RLock()
	loaded := s.facilities != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facilities != nil {
		return nil
	}
	var doc facilityDocument
	if err := s.loadJSON(facilityFile, &doc); err != nil {
		return err
	}
	if doc.FacilityOverview == nil {
		doc.FacilityOverview = []model.FacilityOverview{}
	}
	s.facilities = doc.FacilityOverview
	return nil
}

func (s *Store) ensureNotes() error {
	s.mu.RLock()
	loaded := s.notes != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notes != nil {
		return nil
	}
	notes := map[string][]model.NoteOverview{}
	if err := s.loadJSON(notesFile, &notes); err != nil {
		return err
	}
	s.notes = notes
	return nil
}

// AccountByID returns the account with the given account id.
func (s *Store) AccountByID(accountID string) (*model.AccountOverview, error) {
	if err := s.ensureAccounts(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.accounts {
		if s.accounts[i].AccountID == accountID {
			acc := s.accounts[i]
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("account %s: %w", accountID, errx.ErrNotFound)
}

// AccountByUserID returns the account owned by the given user id.
func (s *Store) AccountByUserID(userID string) (*model.AccountOverview, error) {
	if err := s.ensureAccounts(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.accounts {
		if s.accounts[i].UserID == userID {
			acc := s.accounts[i]
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("account for user %s: %w", userID, errx.ErrNotFound)
}

// FacilityByID returns the facility with the given facility id.
func (s *Store) FacilityByID(facilityID string) (*model.FacilityOverview, error) {
	if err := s.ensureFacilities(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.facilities {
		if s.facilities[i].ID == facilityID {
			fac := s.facilities[i]
			return &fac, nil
		}
	}
	return nil, fmt.Errorf("facility %s: %w", facilityID, errx.ErrNotFound)
}

// FacilitiesByAccountID returns every facility attached to the account. An
// unknown account yields an empty slice, not an error.
func (s *Store) FacilitiesByAccountID(accountID string) ([]model.FacilityOverview, error) {
	if err := s.ensureFacilities(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.FacilityOverview{}
	for i := range s.facilities {
		if s.facilities[i].AccountID == accountID {
			out = append(out, s.facilities[i])
		}
	}
	return out, nil
}

// NotesByUserID returns all notes stored for the user, in stored order.
func (s *Store) NotesByUserID(userID string) ([]model.NoteOverview, error) {
	if err := s.ensureNotes(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := s.notes[userID]
	out := make([]model.NoteOverview, len(notes))
	copy(out, notes)
	return out, nil
}

// SaveNote appends a note for the user and rewrites the notes file.
// Duplicates are allowed; the storage layer does not deduplicate.
func (s *Store) SaveNote(userID string, note model.NoteOverview) error {
	if err := s.ensureNotes(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[userID] = append(s.notes[userID], note)

	b, err := json.MarshalIndent(s.notes, "", "  ")
	if err != nil {
		s.rollbackNote(userID)
		return fmt.Errorf("encode notes: %w", err)
	}
	path := filepath.Join(s.dir, notesFile)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		s.rollbackNote(userID)
		logx.Error().Err(err).Str("path", path).Msg("failed to persist notes file")
		return fmt.Errorf("write notes: %w", err)
	}
	return nil
}

// rollbackNote drops the last appended note after a failed write so the cache
// stays consistent with disk. Caller holds the write lock.
func (s *Store) rollbackNote(userID string) {
	notes := s.notes[userID]
	if len(notes) > 0 {
		s.notes[userID] = notes[:len(notes)-1]
	}
}
