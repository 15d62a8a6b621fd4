package snapshot

import (
	"context"
	"encoding/json"

	"github.com/openclob/matching-engine/pkg/errors"
	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/openclob/matching-engine/pkg/redis"

	snapshotv1 "github.com/openclob/matching-engine/internal/domain/snapshot/v1"
)

// Store persists engine snapshots in Redis, keyed by instrument.
type Store struct {
	instrument  string
	logger      logger.Interface
	redisclient redis.Client
}

// NewSnapshotStore creates a snapshot store backed by the given Redis
// client.
func NewSnapshotStore(redisclient redis.Client, instrument string, log logger.Interface) *Store {
	return &Store{
		instrument:  instrument,
		redisclient: redisclient,
		logger:      log,
	}
}

// Store serializes the snapshot and writes it to Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "instrument", Value: s.instrument},
			logger.Field{Key: "action", Value: "marshal snapshot"},
		)
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.instrument, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "instrument", Value: s.instrument},
			logger.Field{Key: "action", Value: "store snapshot"},
		)
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	s.logger.InfoContext(ctx, "Snapshot stored",
		logger.Field{Key: "instrument", Value: s.instrument},
		logger.Field{Key: "orderOffset", Value: snapshot.OrderOffset},
	)
	return nil
}

// LoadStore reads the latest snapshot from Redis. A missing snapshot is
// not an error; it returns nil for a cold start.
func (s *Store) LoadStore(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.instrument)
	if err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "instrument", Value: s.instrument},
			logger.Field{Key: "action", Value: "load snapshot"},
		)
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "No snapshot found, starting cold",
			logger.Field{Key: "instrument", Value: s.instrument},
		)
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "instrument", Value: s.instrument},
			logger.Field{Key: "action", Value: "unmarshal snapshot"},
		)
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}
