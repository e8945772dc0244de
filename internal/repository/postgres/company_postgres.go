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

type companyRepository struct{ pool *pgxpool.Pool }

func NewCompanyRepository(pool *pgxpool.Pool) repository.CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) Create(ctx context.Context, c model.Company) (model.Company, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Company{}, err
	}
	out, stmt := repository.InsertCompany(repository.Postgres, c)
	if _, err := getQ(ctx, r.pool).Exec(ctx, stmt.SQL, stmt.Args...); err != nil {
		return model.Company{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Company, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Company{}, err
	}
	stmt := repository.CompanyByID(repository.Postgres, id)
	out, err := repository.ScanCompany(getQ(ctx, r.pool).QueryRow(ctx, stmt.SQL, stmt.Args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Company{}, repository.ErrNotFound
		}
		return model.Company{}, repository.MapPgError(err)
	}
	return out, nil
}

// Exists performs a lightweight check to see if a company with the given ID exists.
func (r *companyRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	stmt := repository.CompanyExists(repository.Postgres, id)
	var exists bool
	if err := getQ(ctx, r.pool).QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&exists); err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

func (r *companyRepository) Count(ctx context.Context, w paginate.Where) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	stmt, err := repository.CountCompanies(repository.Postgres, w)
	if err != nil {
		return 0, err
	}
	var n int
	if err := getQ(ctx, r.pool).QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *companyRepository) FindMany(ctx context.Context, c paginate.Criteria) ([]model.Company, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	stmt, err := repository.FindCompanies(repository.Postgres, c)
	if err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, stmt.SQL, stmt.Args...)
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
