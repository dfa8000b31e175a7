package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_track_points",
		SQL: `CREATE TABLE IF NOT EXISTS track_points (
  id            BIGSERIAL        PRIMARY KEY,
  peer_id       TEXT             NOT NULL,
  name          TEXT             NOT NULL DEFAULT '',
  lat           DOUBLE PRECISION NOT NULL,
  lon           DOUBLE PRECISION NOT NULL,
  alt           INTEGER          NOT NULL,
  ground_speed  INTEGER          NOT NULL,
  ground_course INTEGER          NOT NULL CHECK (ground_course BETWEEN 0 AND 360),
  recorded_at   TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_track_points_peer_recorded",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_track_points_peer_recorded ON track_points (peer_id, recorded_at DESC);`,
	},
	{
		Name: "create_index_track_points_recorded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_track_points_recorded_at ON track_points (recorded_at);`,
	},
}

// EnsureMigrated creates the track history schema unless the track_points table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check")

	var exists bool
	query := "SELECT to_regclass('public.track_points') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	log.Info("db_migration_start", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"migration_step", step.Name,
				"error", err,
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
