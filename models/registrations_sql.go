package models

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type sqlRegistrationRepo struct{ db *sql.DB }

func NewSQLRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqlRegistrationRepo{db}
}

// Register inserts inside a transaction so the capacity check and the insert
// see a consistent count. UNIQUE(user_id, event_id) still backstops duplicates.
func (r *sqlRegistrationRepo) Register(userID int64, eventID string, maxAttendees int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if maxAttendees > 0 {
		var n int64
		err := tx.QueryRow(`SELECT COUNT(*) FROM registrations WHERE event_id=$1`, eventID).Scan(&n)
		if err != nil {
			return err
		}
		if n >= int64(maxAttendees) {
			return ErrEventFull
		}
	}

	if _, err := tx.Exec(`INSERT INTO registrations(user_id, event_id) VALUES ($1,$2)`, userID, eventID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyAttending
		}
		return err
	}
	return tx.Commit()
}

func (r *sqlRegistrationRepo) Cancel(userID int64, eventID string) error {
	res, err := r.db.Exec(`DELETE FROM registrations WHERE user_id=$1 AND event_id=$2`, userID, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRegistrationRepo) CountForEvent(eventID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM registrations WHERE event_id=$1`, eventID).Scan(&n)
	return n, err
}

func (r *sqlRegistrationRepo) CountForEvents(eventIDs []string) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM registrations WHERE event_id::text = ANY($1)`, pq.Array(eventIDs)).Scan(&n)
	return n, err
}
