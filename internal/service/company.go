package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

// companyService holds company use-case logic: validation + orchestration, no transport / SQL details.
type companyService struct {
	repo   repository.CompanyRepository
	schema paginate.Schema
	obs    ListObserver
	log    zerolog.Logger
}

func NewCompanyService(repo repository.CompanyRepository, opts ListOptions, logger zerolog.Logger) CompanyService {
	l := logger.With().Str("module", "service").Str("component", "company").Logger()
	return &companyService{repo: repo, schema: CompanySchema(opts), obs: opts.Observer, log: l}
}

// CompanySchema is the allow-list for company list queries.
func CompanySchema(opts ListOptions) paginate.Schema {
	return paginate.Schema{
		Filters: map[string]paginate.Kind{
			"id":       paginate.KindUUID,
			"name":     paginate.KindString,
			"industry": paginate.KindString,
		},
		Sortable: []string{"name", "industry", "created_at", "updated_at"},
		MaxLimit: opts.MaxLimit,
		Strict:   opts.Strict,
	}
}

var companySearchFields = []string{"name", "industry"}

func (s *companyService) CreateCompany(ctx context.Context, in CreateCompanyInput) (model.Company, error) {
	start := time.Now()
	name := strings.TrimSpace(in.Name)
	industry := strings.TrimSpace(in.Industry)

	var ferrs []FieldError
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if fe := checkLength("name", name, 2, 100); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if fe := checkLength("industry", industry, 0, 100); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Str("name_raw", in.Name).Interface("field_errors", ferrs).Msg("company validation failed")
		return model.Company{}, err
	}

	out, err := s.repo.Create(ctx, model.Company{Name: name, Industry: industry})
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("name", name).Msg("create company failed")
		return model.Company{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("company_id", out.ID.String()).Msg("company created")
	return out, nil
}

func (s *companyService) GetCompany(ctx context.Context, id string) (model.Company, error) {
	cid, fe := parseID("id", id)
	if fe != nil {
		return model.Company{}, newInvalidInput([]FieldError{*fe})
	}
	return s.repo.GetByID(ctx, cid)
}

func (s *companyService) ListCompanies(ctx context.Context, query url.Values) (paginate.Envelope[model.Company], error) {
	return list(ctx, s.log, s.obs, "companies", s.repo, query, s.schema, paginate.Options{
		SearchFields: companySearchFields,
	})
}

// list runs a paginated query and keeps logging and metrics uniform across resources.
func list[T any](ctx context.Context, log zerolog.Logger, obs ListObserver, resource string, store paginate.Store[T], query url.Values, schema paginate.Schema, opts paginate.Options) (paginate.Envelope[T], error) {
	start := time.Now()
	d, err := paginate.ParseQuery(query, schema)
	if err != nil {
		log.Debug().Err(err).Str("resource", resource).Msg("list query rejected")
		return paginate.Envelope[T]{}, fromQueryError(err)
	}
	if len(d.Dropped) > 0 {
		log.Debug().Strs("dropped", d.Dropped).Str("resource", resource).Msg("ignoring unknown query keys")
	}

	opts.Schema = schema
	env, err := paginate.Fetch(ctx, store, d, opts)
	if obs != nil {
		obs.ObserveList(resource, time.Since(start), env.TotalDocs, err)
	}
	if err != nil {
		log.Error().Err(err).Str("resource", resource).Int("page", d.Page).Int("limit", d.Take).Msg("list failed")
		return paginate.Envelope[T]{}, err
	}
	return env, nil
}
