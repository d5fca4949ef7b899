package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS appointments (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			appt_date        DATE NOT NULL,
			start_time       TEXT NOT NULL,
			end_time         TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes > 0),
			customer         TEXT NOT NULL,
			service          TEXT NOT NULL DEFAULT '',
			vehicle          TEXT NOT NULL DEFAULT '',
			address          TEXT NOT NULL DEFAULT '',
			notes            TEXT NOT NULL DEFAULT '',
			price_cents      INTEGER NOT NULL DEFAULT 0 CHECK(price_cents >= 0),
			status           TEXT NOT NULL DEFAULT 'booked' CHECK(status IN ('booked', 'completed', 'cancelled')),
			external_uid     TEXT NOT NULL DEFAULT '',
			created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appt_date);
		CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_external_uid
			ON appointments(external_uid) WHERE external_uid != '';
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating appointments table: %w", err)
	}

	return nil
}
