package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/utils"
)

type PostgresRepository struct {
	db    *pgxpool.Pool
	clock utils.Clock
}

func NewPostgresRepository(db *pgxpool.Pool, clock utils.Clock) *PostgresRepository {
	return &PostgresRepository{db: db, clock: clock}
}

type pgQueryer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgSelectEvents = `SELECT id, name, description, amount::text, to_char(event_date, 'YYYY-MM-DD'), kind, attachment FROM wallet_event`

func (r *PostgresRepository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.db.Query(ctx, pgSelectEvents+` ORDER BY position`)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 16)
	for rows.Next() {
		event, err := scanPgEvent(rows)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Event, error) {
	event, err := scanPgEvent(r.db.QueryRow(ctx, pgSelectEvents+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *PostgresRepository) Store(ctx context.Context, event Event) error {
	return r.store(ctx, r.db, event)
}

func (r *PostgresRepository) store(ctx context.Context, q pgQueryer, event Event) error {
	query := `INSERT INTO wallet_event (
				id,
				name,
				description,
				amount,
				event_date,
				kind,
				attachment,
				created_at,
				updated_at
			) VALUES ($1, $2, $3, $4::numeric, $5::date, $6, $7, $8, $8)`

	_, err := q.Exec(ctx, query,
		event.Id,
		event.Name,
		event.Description,
		event.Amount.String(),
		event.Date.String(),
		string(event.Kind),
		event.Attachment,
		r.clock.Now(),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, event Event) error {
	query := `UPDATE wallet_event SET
				name = $1,
				description = $2,
				amount = $3::numeric,
				event_date = $4::date,
				kind = $5,
				attachment = $6,
				updated_at = $7
			WHERE id = $8`

	tag, err := r.db.Exec(ctx, query,
		event.Name,
		event.Description,
		event.Amount.String(),
		event.Date.String(),
		string(event.Kind),
		event.Attachment,
		r.clock.Now(),
		event.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM wallet_event WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *PostgresRepository) StoreAll(ctx context.Context, events []Event) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, event := range events {
			if err := r.store(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepository) ReplaceAll(ctx context.Context, events []Event) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM wallet_event`); err != nil {
			err := fmt.Errorf("could not clear events: %w", err)
			log.Error(err)
			return err
		}
		for _, event := range events {
			if err := r.store(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func scanPgEvent(row pgx.Row) (Event, error) {
	var (
		event  Event
		amount string
		date   string
		kind   string
	)
	err := row.Scan(&event.Id, &event.Name, &event.Description, &amount, &date, &kind, &event.Attachment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("error scanning row: %w", err)
	}
	return decodeColumns(event, amount, date, kind)
}
