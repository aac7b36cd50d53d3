package gormstore

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/primabook/primabook/internal/clock"
	"github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/primabook/primabook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

// Store is the gorm-backed event store. The expected-version check and the
// inserts run in a single transaction; a unique index on
// (aggregate_id, aggregate_type, version) backstops racing writers that pass
// the in-transaction check.
type Store struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) *Store {
	return &Store{
		db:    p.DB,
		log:   p.Log.Named("eventstore"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Store) Append(ctx context.Context, aggregateID, aggregateType string, events []domain.EventData, expectedVersion int64) (int64, error) {
	if len(events) == 0 {
		return 0, domain.ErrNoEvents
	}

	newVersion := expectedVersion + int64(len(events))
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int64
		err := tx.Raw(
			`SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ? AND aggregate_type = ?`,
			aggregateID, aggregateType,
		).Scan(&current).Error
		if err != nil {
			return fmt.Errorf("read stream version: %w", err)
		}
		if current != expectedVersion {
			return &domain.ConcurrencyError{AggregateID: aggregateID, Expected: expectedVersion, Actual: current}
		}

		version := expectedVersion
		for _, event := range events {
			version++
			record := domain.StoredEvent{
				EventID:       s.genID.Generate().Int64(),
				AggregateID:   aggregateID,
				AggregateType: aggregateType,
				EventType:     event.Type,
				EventData:     datatypes.JSON(event.Data),
				Version:       version,
				Timestamp:     now,
			}
			if len(event.Metadata) > 0 {
				record.Metadata = datatypes.JSON(event.Metadata)
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("append event %s v%d: %w", event.Type, version, err)
			}
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// A concurrent writer committed the same version first.
			actual, verr := s.AggregateVersion(ctx, aggregateID, aggregateType)
			if verr != nil {
				actual = expectedVersion
			}
			return 0, &domain.ConcurrencyError{AggregateID: aggregateID, Expected: expectedVersion, Actual: actual}
		}
		return 0, err
	}

	s.log.Debug("events appended",
		zap.String("aggregate_id", aggregateID),
		zap.String("aggregate_type", aggregateType),
		zap.Int("count", len(events)),
		zap.Int64("version", newVersion),
	)
	return newVersion, nil
}

func (s *Store) Events(ctx context.Context, aggregateID, aggregateType string, fromVersion int64) ([]domain.StoredEvent, error) {
	var records []domain.StoredEvent
	err := s.db.WithContext(ctx).Raw(
		`SELECT event_id, aggregate_id, aggregate_type, event_type, event_data, metadata, version, timestamp
		 FROM events
		 WHERE aggregate_id = ? AND aggregate_type = ? AND version > ?
		 ORDER BY version ASC`,
		aggregateID, aggregateType, fromVersion,
	).Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", aggregateID, err)
	}
	return records, nil
}

func (s *Store) AggregateVersion(ctx context.Context, aggregateID, aggregateType string) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ? AND aggregate_type = ?`,
		aggregateID, aggregateType,
	).Scan(&version).Error
	if err != nil {
		return domain.VersionNotFound, fmt.Errorf("read stream version for %s: %w", aggregateID, err)
	}
	return version, nil
}
