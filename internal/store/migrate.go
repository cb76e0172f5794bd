package store

import "fmt"

type migration struct {
	version     int
	description string
	apply       func(*DB) error
}

// Migrations run once each, tracked in schema_migrations. The base
// schema is created by the Schema constant; migrations hold repair
// passes and later additive changes.
var migrations = []migration{
	{
		version:     1,
		description: "move legacy remote URLs out of local_path",
		apply:       repairLegacyLocations,
	},
}

func (db *DB) runMigrations() error {
	for _, m := range migrations {
		var count int
		if err := db.Get(&count, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version); err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		if _, err := db.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.version, m.description); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}
	return nil
}

// repairLegacyLocations fixes rows written by an earlier version that
// stored the remote URL in local_path after upload. Only strings with a
// network-scheme prefix move; genuine local paths (including file://
// URIs) are untouched.
func repairLegacyLocations(db *DB) error {
	_, err := db.Exec(`
		UPDATE recordings
		SET remote_url = local_path,
		    local_path = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE local_path LIKE 'http://%' OR local_path LIKE 'https://%'`)
	return err
}
