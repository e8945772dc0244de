package cache

import (
	"context"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

// WrapCompanies serves company totals through cc and invalidates them once a create
// is committed.
func WrapCompanies(repo repository.CompanyRepository, cc *CountCache[model.Company]) repository.CompanyRepository {
	return &companies{CompanyRepository: repo, cache: cc}
}

type companies struct {
	repository.CompanyRepository
	cache *CountCache[model.Company]
}

func (r *companies) Create(ctx context.Context, c model.Company) (model.Company, error) {
	out, err := r.CompanyRepository.Create(ctx, c)
	if err == nil {
		repository.AfterCommit(ctx, r.cache.Invalidate)
	}
	return out, err
}

func (r *companies) Count(ctx context.Context, w paginate.Where) (int, error) {
	return r.cache.Count(ctx, w)
}

// WrapContacts serves contact totals through cc and invalidates them once a create
// is committed.
func WrapContacts(repo repository.ContactRepository, cc *CountCache[model.Contact]) repository.ContactRepository {
	return &contacts{ContactRepository: repo, cache: cc}
}

type contacts struct {
	repository.ContactRepository
	cache *CountCache[model.Contact]
}

func (r *contacts) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	out, err := r.ContactRepository.Create(ctx, c)
	if err == nil {
		repository.AfterCommit(ctx, r.cache.Invalidate)
	}
	return out, err
}

func (r *contacts) Count(ctx context.Context, w paginate.Where) (int, error) {
	return r.cache.Count(ctx, w)
}
