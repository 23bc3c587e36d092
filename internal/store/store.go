package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/jiangwan/chrome-outlook-calendar/internal/security"
)

// File names for the persisted keys. Each key is an independent document
// replaced wholesale on write; there are no partial-field updates.
const (
	tokenFile     = "token.enc"
	calendarsFile = "calendars.json"
	eventsFile    = "events.json"
	photoFile     = "photo.json"
)

// ErrNotFound is returned when a key has never been written or was cleared.
var ErrNotFound = errors.New("store: key not found")

// Store persists the session state as per-key JSON documents under a state
// directory. The token record is encrypted at rest; everything else is
// plain JSON.
type Store struct {
	dir       string
	encryptor *security.Encryptor
}

// New opens (creating if needed) the store rooted at dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultStateDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	encryptor, err := security.NewEncryptor(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token encryption: %w", err)
	}

	return &Store{dir: dir, encryptor: encryptor}, nil
}

// DefaultStateDir returns the XDG data directory for this tool.
func DefaultStateDir() string {
	return filepath.Join(xdg.DataHome, "chrome-outlook-calendar")
}

// Dir returns the state directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

// SaveToken replaces the persisted token record.
func (s *Store) SaveToken(rec *TokenRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	sealed, err := s.encryptor.Encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt token record: %w", err)
	}

	return s.writeFile(tokenFile, []byte(sealed), 0600)
}

// LoadToken reads the persisted token record, ErrNotFound if absent.
func (s *Store) LoadToken() (*TokenRecord, error) {
	raw, err := s.readFile(tokenFile)
	if err != nil {
		return nil, err
	}

	data, err := s.encryptor.Decrypt(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token record: %w", err)
	}

	var rec TokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}
	return &rec, nil
}

// DeleteToken removes the token record only, leaving cached data intact.
func (s *Store) DeleteToken() error {
	return s.removeFile(tokenFile)
}

// SaveCalendars replaces the persisted calendar list.
func (s *Store) SaveCalendars(calendars []CalendarDescriptor) error {
	return s.writeJSON(calendarsFile, calendars)
}

// LoadCalendars reads the persisted calendar list, ErrNotFound if absent.
func (s *Store) LoadCalendars() ([]CalendarDescriptor, error) {
	var calendars []CalendarDescriptor
	if err := s.readJSON(calendarsFile, &calendars); err != nil {
		return nil, err
	}
	return calendars, nil
}

// SaveEvents replaces the event collection and the last-synced timestamp in
// a single write.
func (s *Store) SaveEvents(snapshot *EventSnapshot) error {
	return s.writeJSON(eventsFile, snapshot)
}

// LoadEvents reads the persisted event snapshot, ErrNotFound if absent.
func (s *Store) LoadEvents() (*EventSnapshot, error) {
	var snapshot EventSnapshot
	if err := s.readJSON(eventsFile, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SavePhoto replaces the cached user photo data URL.
func (s *Store) SavePhoto(dataURL string) error {
	return s.writeJSON(photoFile, dataURL)
}

// LoadPhoto reads the cached user photo data URL, ErrNotFound if absent.
func (s *Store) LoadPhoto() (string, error) {
	var dataURL string
	if err := s.readJSON(photoFile, &dataURL); err != nil {
		return "", err
	}
	return dataURL, nil
}

// Clear removes every persisted key together. Used on logout and when
// retries are exhausted with an authorization failure.
func (s *Store) Clear() error {
	var firstErr error
	for _, name := range []string{tokenFile, calendarsFile, eventsFile, photoFile} {
		if err := s.removeFile(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return s.writeFile(name, data, 0600)
}

func (s *Store) readJSON(name string, v any) error {
	data, err := s.readFile(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// writeFile replaces the document atomically: full write to a temp file in
// the same directory, then rename. A reader never sees a torn document.
func (s *Store) writeFile(name string, data []byte, perm os.FileMode) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) readFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *Store) removeFile(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
