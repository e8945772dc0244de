package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

type contactRepository struct{ pool *pgxpool.Pool }

func NewContactRepository(pool *pgxpool.Pool) repository.ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Contact{}, err
	}
	out, stmt := repository.InsertContact(repository.Postgres, c)
	if _, err := getQ(ctx, r.pool).Exec(ctx, stmt.SQL, stmt.Args...); err != nil {
		return model.Contact{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Contact, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Contact{}, err
	}
	stmt := repository.ContactByID(repository.Postgres, id)
	out, err := repository.ScanContact(getQ(ctx, r.pool).QueryRow(ctx, stmt.SQL, stmt.Args...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Contact{}, repository.ErrNotFound
		}
		return model.Contact{}, repository.MapPgError(err)
	}
	return out, nil
}

// Count and FindMany return driver errors untouched; callers of paginate
// expect the store's own failures.
func (r *contactRepository) Count(ctx context.Context, w paginate.Where) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	stmt, err := repository.CountContacts(repository.Postgres, w)
	if err != nil {
		return 0, err
	}
	var n int
	if err := getQ(ctx, r.pool).QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *contactRepository) FindMany(ctx context.Context, c paginate.Criteria) ([]model.Contact, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	stmt, err := repository.FindContacts(repository.Postgres, c)
	if err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	withCompany := c.Includes(repository.RelationCompany)
	out := make([]model.Contact, 0, c.Take)
	for rows.Next() {
		ct, err := repository.ScanContact(rows, withCompany)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

var _ repository.ContactRepository = (*contactRepository)(nil)
