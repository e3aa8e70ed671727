package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/utils"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id string) (Event, error)
	Store(ctx context.Context, event Event) error
	Update(ctx context.Context, event Event) error
	Delete(ctx context.Context, id string) error
	// StoreAll appends events in order, all or nothing.
	StoreAll(ctx context.Context, events []Event) error
	// ReplaceAll swaps the whole event list, all or nothing.
	ReplaceAll(ctx context.Context, events []Event) error
}

// RepositoryImpl keeps events in SQLite. Insertion order is kept by the
// autoincrement position column.
type RepositoryImpl struct {
	db    *sql.DB
	tx    *sql.Tx
	clock utils.Clock
}

func NewRepository(db *sql.DB, clock utils.Clock) *RepositoryImpl {
	return &RepositoryImpl{db: db, clock: clock}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *RepositoryImpl) getQueryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) withTransaction(ctx context.Context, fn func(repo *RepositoryImpl) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx, clock: r.clock}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectEvents = `SELECT id, name, description, amount, event_date, kind, attachment FROM wallet_event`

func (r *RepositoryImpl) List(ctx context.Context) ([]Event, error) {
	rows, err := r.getQueryer().QueryContext(ctx, selectEvents+` ORDER BY position`)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 16)
	for rows.Next() {
		event, err := scanEvent(rows)
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

func (r *RepositoryImpl) Get(ctx context.Context, id string) (Event, error) {
	row := r.getQueryer().QueryRowContext(ctx, selectEvents+` WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, event Event) error {
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
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := utils.UnixMillis(r.clock)
	_, err := r.getQueryer().ExecContext(ctx, query,
		event.Id,
		event.Name,
		event.Description,
		event.Amount.String(),
		event.Date.String(),
		string(event.Kind),
		event.Attachment,
		now,
		now,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Update(ctx context.Context, event Event) error {
	query := `UPDATE wallet_event SET
				name = ?,
				description = ?,
				amount = ?,
				event_date = ?,
				kind = ?,
				attachment = ?,
				updated_at = ?
			WHERE id = ?`

	result, err := r.getQueryer().ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.Amount.String(),
		event.Date.String(),
		string(event.Kind),
		event.Attachment,
		utils.UnixMillis(r.clock),
		event.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return expectOneRow(result)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.getQueryer().ExecContext(ctx, `DELETE FROM wallet_event WHERE id = ?`, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return expectOneRow(result)
}

func (r *RepositoryImpl) StoreAll(ctx context.Context, events []Event) error {
	return r.withTransaction(ctx, func(repo *RepositoryImpl) error {
		for _, event := range events {
			if err := repo.Store(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) ReplaceAll(ctx context.Context, events []Event) error {
	return r.withTransaction(ctx, func(repo *RepositoryImpl) error {
		if _, err := repo.getQueryer().ExecContext(ctx, `DELETE FROM wallet_event`); err != nil {
			err := fmt.Errorf("could not clear events: %w", err)
			log.Error(err)
			return err
		}
		for _, event := range events {
			if err := repo.Store(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		event  Event
		amount string
		date   string
		kind   string
	)
	err := row.Scan(&event.Id, &event.Name, &event.Description, &amount, &date, &kind, &event.Attachment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("could not scan row: %w", err)
	}
	return decodeColumns(event, amount, date, kind)
}

func decodeColumns(event Event, amount, date, kind string) (Event, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return Event{}, fmt.Errorf("event %s has invalid stored amount %q: %w", event.Id, amount, err)
	}
	parsedDate, err := ParseDate(date)
	if err != nil {
		return Event{}, fmt.Errorf("event %s has invalid stored date %q: %w", event.Id, date, err)
	}
	event.Amount = parsedAmount
	event.Date = parsedDate
	event.Kind = Kind(kind)
	return event, nil
}
