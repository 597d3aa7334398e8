package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/J-Olejnik/arepas/internal/api"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	pID                TEXT NOT NULL,
	date_of_prediction TEXT NOT NULL,
	predicted_class    INTEGER NOT NULL,
	prediction         REAL NOT NULL,
	reviewer           TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'Open',
	annotation         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_predictions_pid ON predictions(pID);
`

// Store wraps the review database.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func truncate(v string, max int) string {
	if len(v) > max {
		return v[:max]
	}
	return v
}

func validStatus(v string) string {
	for _, s := range api.ReviewStatuses {
		if v == s {
			return v
		}
	}
	return "Open"
}

// Save inserts a new row or, when the id already exists, updates only
// the reviewer-editable columns. Returns the row id.
func (s *Store) Save(ctx context.Context, p api.SavePayload) (int64, error) {
	reviewer := truncate(p.Reviewer, 50)
	status := validStatus(p.Status)
	annotation := truncate(p.Annotation, 500)

	if p.ID != nil {
		res, err := s.db.ExecContext(ctx,
			`UPDATE predictions SET reviewer = ?, status = ?, annotation = ? WHERE id = ?`,
			reviewer, status, annotation, *p.ID)
		if err != nil {
			return 0, fmt.Errorf("update record: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("record %d not found", *p.ID)
		}
		return *p.ID, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (pID, date_of_prediction, predicted_class, prediction, reviewer, status, annotation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		truncate(p.PatientID, 15), time.Now().Format("2006-01-02 15:04"),
		p.PredictedClass, p.Prediction, reviewer, status, annotation)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

// List returns every row ordered by patient identifier.
func (s *Store) List(ctx context.Context) ([]api.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pID, date_of_prediction, predicted_class, prediction, reviewer, status, annotation
		 FROM predictions ORDER BY pID`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []api.Record{}
	for rows.Next() {
		var r api.Record
		if err := rows.Scan(&r.ID, &r.PatientID, &r.Date, &r.PredictedClass,
			&r.Prediction, &r.Reviewer, &r.Status, &r.Annotation); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM predictions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}
