package datastores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/amritsagoo91/phonebook-demo/migrations"
)

const pgUniqueViolation = "23505"

// ContactsPostgres implements [ContactsStore] on a Postgres table.
// Identifiers are UUIDv7 values in their [UUID] text form, so listing by
// primary key follows insertion order.
type ContactsPostgres struct {
	pool *pgxpool.Pool
}

var _ ContactsStore = (*ContactsPostgres)(nil)

// NewContactsPostgres opens a pool on databaseURL and applies the embedded
// migrations.
func NewContactsPostgres(ctx context.Context, databaseURL string) (*ContactsPostgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &ContactsPostgres{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *ContactsPostgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *ContactsPostgres) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func (s *ContactsPostgres) List(ctx context.Context) ([]*Contact, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, number FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *ContactsPostgres) Get(ctx context.Context, id ContactID) (*Contact, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `SELECT id, name, number FROM contacts WHERE id = $1`, uuid.UUID(uid))
	return scanContact(row)
}

func (s *ContactsPostgres) Create(ctx context.Context, c *Contact) (ContactID, error) {
	uid := newUUID()
	_, err := s.pool.Exec(ctx, `INSERT INTO contacts (id, name, name_key, number) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(uid), c.Name, nameKey(c.Name), c.Number,
	)
	if err != nil {
		return "", pgError(err)
	}
	c.ID = uid.String()
	return c.ID, nil
}

func (s *ContactsPostgres) Update(ctx context.Context, id ContactID, c *Contact) (*Contact, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE contacts
		SET name = $2, name_key = $3, number = $4
		WHERE id = $1
		RETURNING id, name, number
	`, uuid.UUID(uid), c.Name, nameKey(c.Name), c.Number)
	updated, err := scanContact(row)
	if err != nil {
		return nil, pgError(err)
	}
	return updated, nil
}

func (s *ContactsPostgres) Delete(ctx context.Context, id ContactID) error {
	uid, err := parseUUID(id)
	if err != nil {
		return nil //nolint: nilerr // nothing can be stored under a malformed id
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, uuid.UUID(uid))
	return err
}

func (s *ContactsPostgres) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&n)
	return n, err
}

func scanContact(row pgx.Row) (*Contact, error) {
	var (
		id     uuid.UUID
		name   string
		number string
	)
	if err := row.Scan(&id, &name, &number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &Contact{ID: UUID(id).String(), Name: name, Number: number}, nil
}

// pgError maps constraint violations to store errors.
func pgError(err error) error {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgUniqueViolation {
		return ErrDuplicateName
	}
	return err
}
