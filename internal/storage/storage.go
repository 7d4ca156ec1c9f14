// Package storage persists the system state and the last connectivity report as JSON
// blobs under two fixed keys.
package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/model"
)

const (
	// StateKey holds model.SystemState.
	StateKey = "bark-system-data"
	// LastTestKey holds the latest model.ConnectivityReport.
	LastTestKey = "lastConnectivityTest"
)

// Store is a persistence adapter. Load methods never fail: missing or corrupted data
// degrades to defaults and is logged.
type Store interface {
	Load(ctx context.Context) model.SystemState
	Save(ctx context.Context, state model.SystemState) error
	LoadLastTest(ctx context.Context) *model.ConnectivityReport
	SaveLastTest(ctx context.Context, report model.ConnectivityReport) error
}

// blobs is a key-value backend holding raw JSON.
type blobs interface {
	get(key string) ([]byte, error)
	put(key string, value []byte) error
}

type store struct {
	b      blobs
	logger zerolog.Logger
}

func newStore(b blobs, logger zerolog.Logger) *store {
	return &store{
		b:      b,
		logger: logger.With().Str("pkg", "storage").Logger(),
	}
}

func (s *store) Load(_ context.Context) model.SystemState {
	data, err := s.b.get(StateKey)
	if err != nil {
		s.logger.Error().Err(err).Str("key", StateKey).Msg("reading state, using defaults")
		return model.DefaultState()
	}

	if data == nil {
		return model.DefaultState()
	}

	state, err := decodeState(data)
	if err != nil {
		s.logger.Error().Err(err).Str("key", StateKey).Msg("failed to parse saved data, using defaults")
		return model.DefaultState()
	}

	return state
}

func (s *store) Save(_ context.Context, state model.SystemState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshalling state")
	}

	if err = s.b.put(StateKey, data); err != nil {
		return errors.Wrapf(err, "writing %s", StateKey)
	}

	s.logger.Debug().Int("size", len(data)).Msg("state saved")

	return nil
}

func (s *store) LoadLastTest(_ context.Context) *model.ConnectivityReport {
	data, err := s.b.get(LastTestKey)
	if err != nil {
		s.logger.Error().Err(err).Str("key", LastTestKey).Msg("reading last test")
		return nil
	}

	if data == nil {
		return nil
	}

	var report model.ConnectivityReport
	if err = json.Unmarshal(data, &report); err != nil {
		s.logger.Error().Err(err).Str("key", LastTestKey).Msg("failed to parse last test")
		return nil
	}

	if report.Results == nil {
		report.Results = []model.DeviceResult{}
	}

	return &report
}

func (s *store) SaveLastTest(_ context.Context, report model.ConnectivityReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshalling report")
	}

	if err = s.b.put(LastTestKey, data); err != nil {
		return errors.Wrapf(err, "writing %s", LastTestKey)
	}

	return nil
}

func decodeState(data []byte) (model.SystemState, error) {
	data, err := stripLegacyFields(data)
	if err != nil {
		return model.SystemState{}, err
	}

	var state model.SystemState
	if err = json.Unmarshal(data, &state); err != nil {
		return model.SystemState{}, errors.Wrap(err, "unmarshalling state")
	}

	state.Normalize()

	return state, nil
}
