package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Backfills an initial status_history row for proposals created before the
// workflow service started writing history. Deadline anchoring falls back to
// status_changed_at without one, so this is cleanup, not a correctness fix.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	fmt.Println("Connected to database")

	result, err := db.Exec(`
		INSERT INTO status_history
			(id, proposal_id, from_status, to_status, changed_by, comment,
			 transition_reason, automatic, changed_at)
		SELECT gen_random_uuid(), p.id, 'draft', p.status, NULL, '',
			 'history_backfill', false, p.created_at
		FROM proposals p
		WHERE NOT EXISTS (
			SELECT 1 FROM status_history h WHERE h.proposal_id = p.id
		)
	`)
	if err != nil {
		log.Fatal("Backfill failed:", err)
	}

	rows, _ := result.RowsAffected()
	fmt.Printf("Backfilled %d history rows\n", rows)
}
