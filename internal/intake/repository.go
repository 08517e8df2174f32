package intake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/homeservice/hsbot/core/logger"
	"log/slog"
)

const uniqueViolation = "23505"

// Submission is a persisted service request keyed by contact phone.
type Submission struct {
	UserID      int64          `db:"user_id"`
	Description string         `db:"description"`
	Name        string         `db:"name"`
	Phone       string         `db:"phone"`
	TaxID       sql.NullString `db:"inn"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Repository persists submissions in Postgres.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps the shared database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Submit stores a new submission or reuses the record registered under the
// same phone number. Exactly one row exists per phone; when the phone is
// already known the stored tax id takes precedence over the submitted one.
// The returned flag reports whether an existing record was reused.
func (r *Repository) Submit(ctx context.Context, sub Submission) (Submission, bool, error) {
	start := time.Now()

	res, existing, err := r.submitOnce(ctx, sub)
	if err != nil {
		var pqErr *pq.Error
		// Concurrent submission with the same phone: the other insert won,
		// re-read and reuse its row.
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			res, existing, err = r.submitOnce(ctx, sub)
		}
	}
	if err != nil {
		return Submission{}, false, err
	}

	logger.Debug(ctx, "service.intake", "submission.stored",
		slog.String("status", "ok"),
		slog.Int64("request_id", res.UserID),
		slog.Bool("existing", existing),
		slog.Duration("took", logger.Took(start)),
	)
	return res, existing, nil
}

func (r *Repository) submitOnce(ctx context.Context, sub Submission) (Submission, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Submission{}, false, fmt.Errorf("intake: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stored struct {
		UserID int64          `db:"user_id"`
		TaxID  sql.NullString `db:"inn"`
	}
	err = tx.GetContext(ctx, &stored,
		`SELECT user_id, inn FROM requests WHERE phone = $1`, sub.Phone)
	switch {
	case err == nil:
		sub.UserID = stored.UserID
		sub.TaxID = stored.TaxID
		if err := tx.Commit(); err != nil {
			return Submission{}, false, fmt.Errorf("intake: commit: %w", err)
		}
		return sub, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// fall through to insert
	default:
		return Submission{}, false, fmt.Errorf("intake: lookup by phone: %w", err)
	}

	err = tx.GetContext(ctx, &sub.UserID,
		`INSERT INTO requests (description, name, phone, inn)
		 VALUES ($1, $2, $3, $4)
		 RETURNING user_id`,
		sub.Description, sub.Name, sub.Phone, sub.TaxID)
	if err != nil {
		return Submission{}, false, fmt.Errorf("intake: insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Submission{}, false, fmt.Errorf("intake: commit: %w", err)
	}
	return sub, false, nil
}
