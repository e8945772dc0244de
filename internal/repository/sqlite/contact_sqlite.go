package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

type contactRepository struct{ db *sql.DB }

func NewContactRepository(db *sql.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	out, stmt := repository.InsertContact(repository.SQLite, c)
	if _, err := getQ(ctx, r.db).ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
		return model.Contact{}, mapError(err)
	}
	return out, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Contact, error) {
	stmt := repository.ContactByID(repository.SQLite, id)
	out, err := repository.ScanContact(getQ(ctx, r.db).QueryRowContext(ctx, stmt.SQL, stmt.Args...), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contact{}, repository.ErrNotFound
		}
		return model.Contact{}, mapError(err)
	}
	return out, nil
}

func (r *contactRepository) Count(ctx context.Context, w paginate.Where) (int, error) {
	stmt, err := repository.CountContacts(repository.SQLite, w)
	if err != nil {
		return 0, err
	}
	var n int
	err = getQ(ctx, r.db).QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n)
	return n, err
}

func (r *contactRepository) FindMany(ctx context.Context, c paginate.Criteria) ([]model.Contact, error) {
	stmt, err := repository.FindContacts(repository.SQLite, c)
	if err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.db).QueryContext(ctx, stmt.SQL, stmt.Args...)
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
