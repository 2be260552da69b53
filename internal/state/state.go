// Package state holds the current application snapshot and persists every
// replacement to a storage.Provider under a single key.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/utils"
)

// Recovery describes how Load obtained the initial snapshot.
type Recovery string

const (
	RecoveryNone                 Recovery = ""
	RecoveryMissing              Recovery = "missing"
	RecoveryCorrupt              Recovery = "corrupt"
	RecoveryMissingTrackingStart Recovery = "missing-tracking-start"
)

var errNoTrackingStart = errors.New("state has no valid trackingStart")

// Encode serializes s in the persisted JSON shape.
func Encode(s models.AppState) ([]byte, error) {
	return json.Marshal(s.Normalize())
}

// Decode parses a persisted snapshot. A snapshot without a valid
// trackingStart is rejected.
func Decode(data []byte) (models.AppState, error) {
	var s models.AppState
	if err := json.Unmarshal(data, &s); err != nil {
		return models.AppState{}, err
	}
	if !utils.IsDate(s.TrackingStart) {
		return models.AppState{}, errNoTrackingStart
	}
	return s.Normalize(), nil
}

// Store is the single holder of the current snapshot. It is not safe for
// concurrent use.
type Store struct {
	provider storage.Provider
	key      string
	current  models.AppState
	now      func() time.Time
}

// Load reads the snapshot from p. A missing, unreadable or incomplete snapshot
// is replaced by a fresh state starting today and persisted immediately; the
// undecodable bytes are kept under a side key. Only provider failures are
// returned as errors.
func Load(p storage.Provider, today string) (*Store, Recovery, error) {
	s := &Store{provider: p, key: constants.StateKey, now: time.Now}

	data, err := p.Get(s.key)
	switch {
	case err == nil:
		decoded, decodeErr := Decode(data)
		if decodeErr == nil {
			s.current = decoded
			return s, RecoveryNone, nil
		}

		recovery := RecoveryCorrupt
		if errors.Is(decodeErr, errNoTrackingStart) {
			recovery = RecoveryMissingTrackingStart
		}
		sideKey := s.CorruptKey()
		if err := p.Put(sideKey, data); err != nil {
			return nil, recovery, fmt.Errorf("failed to preserve unreadable state: %w", err)
		}
		logger.Warn("Stored state unreadable, starting fresh", "reason", decodeErr, "preserved", sideKey)
		return s, recovery, s.reset(today)

	case errors.Is(err, storage.ErrNotFound):
		logger.Info("No stored state, starting fresh", "trackingStart", today)
		return s, RecoveryMissing, s.reset(today)

	default:
		return nil, RecoveryNone, fmt.Errorf("failed to read state: %w", err)
	}
}

func (s *Store) reset(today string) error {
	return s.Replace(models.NewAppState(today))
}

// CorruptKey returns the side key used to preserve an unreadable snapshot.
func (s *Store) CorruptKey() string {
	return s.key + constants.CorruptKeyInfix + strconv.FormatInt(s.now().Unix(), 10)
}

// Get returns the current snapshot.
func (s *Store) Get() models.AppState {
	return s.current
}

// Replace persists next and makes it the current snapshot. On failure the
// previous snapshot stays current.
func (s *Store) Replace(next models.AppState) error {
	next = next.Normalize()
	data, err := Encode(next)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.provider.Put(s.key, data); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	s.current = next
	return nil
}

// CorruptSnapshots lists the side keys holding preserved unreadable snapshots.
func (s *Store) CorruptSnapshots() ([]string, error) {
	return s.provider.Keys(s.key + constants.CorruptKeyInfix)
}
