package person

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/juju/errors"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE Postgres reports for a UNIQUE constraint
// failure.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sqlx.DB
}

var _ Repository = (*PostgresRepository)(nil)

const (
	listPeopleQuery = `
		SELECT id, first_name, last_name, email, address, gender
		FROM person
		ORDER BY id
	`
	getPersonByIDQuery = `
		SELECT id, first_name, last_name, email, address, gender
		FROM person
		WHERE id = $1
	`
	getPersonByEmailQuery = `
		SELECT id, first_name, last_name, email, address, gender
		FROM person
		WHERE email = $1
	`
	getPersonByNameQuery = `
		SELECT id, first_name, last_name, email, address, gender
		FROM person
		WHERE first_name = $1 AND last_name = $2
		ORDER BY id
		LIMIT 1
	`
	getPersonByNameNamedQuery = `
		SELECT id, first_name, last_name, email, address, gender
		FROM person
		WHERE first_name = :first_name AND last_name = :last_name
		ORDER BY id
		LIMIT 1
	`
	insertPersonQuery = `
		INSERT INTO person (first_name, last_name, email, address, gender)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	updatePersonQuery = `
		UPDATE person
		SET first_name = $1,
			last_name = $2,
			email = $3,
			address = $4,
			gender = $5
		WHERE id = $6
	`
	deletePersonQuery = `DELETE FROM person WHERE id = $1`
)

// NewPostgresRepository wraps db, which must have been opened with the pgx
// stdlib driver (see internal/database).
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: sqlx.NewDb(db, "pgx")}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Person, error) {
	people := make([]Person, 0)
	if err := r.db.SelectContext(ctx, &people, listPeopleQuery); err != nil {
		return nil, errors.Annotatef(err, "listing people")
	}
	return people, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Person, error) {
	return r.getOne(ctx, getPersonByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Person, error) {
	return r.getOne(ctx, getPersonByEmailQuery, email)
}

func (r *PostgresRepository) GetByName(ctx context.Context, firstName, lastName string) (Person, error) {
	return r.getOne(ctx, getPersonByNameQuery, firstName, lastName)
}

// GetByNameNamed is GetByName written with named parameters, which sqlx
// rebinds to the driver's positional placeholders.
func (r *PostgresRepository) GetByNameNamed(ctx context.Context, firstName, lastName string) (Person, error) {
	rows, err := r.db.NamedQueryContext(ctx, getPersonByNameNamedQuery, map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		return Person{}, errors.Trace(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Person{}, errors.Trace(err)
		}
		return Person{}, ErrNotFound
	}

	var p Person
	if err := rows.StructScan(&p); err != nil {
		return Person{}, errors.Trace(err)
	}
	return p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (Person, error) {
	var p Person
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, ErrNotFound
		}
		return Person{}, errors.Trace(err)
	}
	return p, nil
}

func (r *PostgresRepository) Save(ctx context.Context, p Person) (Person, error) {
	if p.ID == 0 {
		return r.insert(ctx, p)
	}
	return r.update(ctx, p)
}

func (r *PostgresRepository) insert(ctx context.Context, p Person) (Person, error) {
	var id int64
	err := r.db.QueryRowxContext(
		ctx,
		insertPersonQuery,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Address,
		p.Gender,
	).Scan(&id)
	if err != nil {
		return Person{}, translateError(err)
	}

	p.ID = id
	return p, nil
}

func (r *PostgresRepository) update(ctx context.Context, p Person) (Person, error) {
	result, err := r.db.ExecContext(
		ctx,
		updatePersonQuery,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Address,
		p.Gender,
		p.ID,
	)
	if err != nil {
		return Person{}, translateError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Person{}, errors.Trace(err)
	}
	if affected == 0 {
		return Person{}, ErrNotFound
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, deletePersonQuery, id)
	if err != nil {
		return errors.Trace(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Trace(err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// translateError maps a unique violation reported by either Postgres driver
// to ErrEmailExists. email is the only UNIQUE column on the table.
func translateError(err error) error {
	if isUniqueViolation(err) {
		return ErrEmailExists
	}
	return errors.Trace(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
