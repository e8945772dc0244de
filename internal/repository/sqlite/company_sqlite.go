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

type companyRepository struct{ db *sql.DB }

func NewCompanyRepository(db *sql.DB) repository.CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, c model.Company) (model.Company, error) {
	out, stmt := repository.InsertCompany(repository.SQLite, c)
	if _, err := getQ(ctx, r.db).ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
		return model.Company{}, mapError(err)
	}
	return out, nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Company, error) {
	stmt := repository.CompanyByID(repository.SQLite, id)
	out, err := repository.ScanCompany(getQ(ctx, r.db).QueryRowContext(ctx, stmt.SQL, stmt.Args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Company{}, repository.ErrNotFound
		}
		return model.Company{}, mapError(err)
	}
	return out, nil
}

func (r *companyRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	stmt := repository.CompanyExists(repository.SQLite, id)
	var exists bool
	if err := getQ(ctx, r.db).QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (r *companyRepository) Count(ctx context.Context, w paginate.Where) (int, error) {
	stmt, err := repository.CountCompanies(repository.SQLite, w)
	if err != nil {
		return 0, err
	}
	var n int
	err = getQ(ctx, r.db).QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n)
	return n, err
}

func (r *companyRepository) FindMany(ctx context.Context, c paginate.Criteria) ([]model.Company, error) {
	stmt, err := repository.FindCompanies(repository.SQLite, c)
	if err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.db).QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Company, 0, c.Take)
	for rows.Next() {
		co, err := repository.ScanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, rows.Err()
}

var _ repository.CompanyRepository = (*companyRepository)(nil)
