package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

type contactService struct {
	contacts  repository.ContactRepository
	companies repository.CompanyRepository
	tx        repository.TxManager
	schema    paginate.Schema
	obs       ListObserver
	log       zerolog.Logger
}

func NewContactService(contacts repository.ContactRepository, companies repository.CompanyRepository, tx repository.TxManager, opts ListOptions, logger zerolog.Logger) ContactService {
	l := logger.With().Str("module", "service").Str("component", "contact").Logger()
	return &contactService{
		contacts:  contacts,
		companies: companies,
		tx:        tx,
		schema:    ContactSchema(opts),
		obs:       opts.Observer,
		log:       l,
	}
}

// ContactSchema is the allow-list for contact list queries.
func ContactSchema(opts ListOptions) paginate.Schema {
	return paginate.Schema{
		Filters: map[string]paginate.Kind{
			"id":         paginate.KindUUID,
			"company_id": paginate.KindUUID,
			"first_name": paginate.KindString,
			"last_name":  paginate.KindString,
			"email":      paginate.KindString,
			"status":     paginate.KindString,
		},
		Sortable: []string{"last_name", "first_name", "email", "status", "created_at", "updated_at"},
		MaxLimit: opts.MaxLimit,
		Strict:   opts.Strict,
	}
}

var contactSearchFields = []string{"first_name", "last_name", "email", "phone"}

func (s *contactService) CreateContact(ctx context.Context, in CreateContactInput) (model.Contact, error) {
	start := time.Now()
	c := model.Contact{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Status:    strings.ToLower(strings.TrimSpace(in.Status)),
	}
	if c.Status == "" {
		c.Status = model.StatusActive
	}

	var ferrs []FieldError
	if c.FirstName == "" {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "must not be empty"})
	} else if fe := checkLength("first_name", c.FirstName, 1, 100); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if fe := checkLength("last_name", c.LastName, 0, 100); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if c.Email != "" && !isValidEmail(c.Email) {
		ferrs = append(ferrs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if fe := checkLength("phone", c.Phone, 0, 32); fe != nil {
		ferrs = append(ferrs, *fe)
	}
	if !isValidStatus(c.Status) {
		ferrs = append(ferrs, FieldError{Field: "status", Message: "must be one of active, invited, archived"})
	}
	if raw := strings.TrimSpace(in.CompanyID); raw != "" {
		id, fe := parseID("company_id", raw)
		if fe != nil {
			ferrs = append(ferrs, *fe)
		} else {
			c.CompanyID = uuid.NullUUID{UUID: id, Valid: true}
		}
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("contact validation failed")
		return model.Contact{}, err
	}

	var out model.Contact
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if c.CompanyID.Valid {
			ok, err := s.companies.Exists(ctx, c.CompanyID.UUID)
			if err != nil {
				return err
			}
			if !ok {
				return newInvalidInput([]FieldError{{Field: "company_id", Message: "company does not exist"}})
			}
		}
		var err error
		out, err = s.contacts.Create(ctx, c)
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Msg("create contact failed")
		return model.Contact{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("contact_id", out.ID.String()).Msg("contact created")
	return out, nil
}

func (s *contactService) GetContact(ctx context.Context, id string) (model.Contact, error) {
	cid, fe := parseID("id", id)
	if fe != nil {
		return model.Contact{}, newInvalidInput([]FieldError{*fe})
	}
	return s.contacts.GetByID(ctx, cid)
}

func (s *contactService) ListContacts(ctx context.Context, query url.Values) (paginate.Envelope[model.Contact], error) {
	return s.list(ctx, "contacts", query, paginate.Where{})
}

// ListCompanyContacts pages through one company's contacts. A company_id
// query filter cannot widen the scope: the base condition always wins.
func (s *contactService) ListCompanyContacts(ctx context.Context, companyID string, query url.Values) (paginate.Envelope[model.Contact], error) {
	id, fe := parseID("company_id", companyID)
	if fe != nil {
		return paginate.Envelope[model.Contact]{}, newInvalidInput([]FieldError{*fe})
	}
	ok, err := s.companies.Exists(ctx, id)
	if err != nil {
		return paginate.Envelope[model.Contact]{}, err
	}
	if !ok {
		return paginate.Envelope[model.Contact]{}, repository.ErrNotFound
	}
	if query.Has("company_id") || query.Has("company_id[]") {
		query = without(query, "company_id", "company_id[]")
	}
	return s.list(ctx, "company_contacts", query, paginate.Where{Conds: []paginate.Cond{
		{Field: "company_id", Op: paginate.OpEq, Value: id},
	}})
}

func (s *contactService) ListReachableContacts(ctx context.Context, query url.Values) (paginate.Envelope[model.Contact], error) {
	return s.list(ctx, "reachable_contacts", query, paginate.Where{Or: []paginate.Expr{
		paginate.Cond{Field: "email", Op: paginate.OpNe, Value: ""},
		paginate.Cond{Field: "phone", Op: paginate.OpNe, Value: ""},
	}})
}

func (s *contactService) list(ctx context.Context, resource string, query url.Values, base paginate.Where) (paginate.Envelope[model.Contact], error) {
	query, include, ferrs := splitIncludes(query, repository.RelationCompany)
	if err := newInvalidInput(ferrs); err != nil {
		return paginate.Envelope[model.Contact]{}, err
	}
	return list(ctx, s.log, s.obs, resource, s.contacts, query, s.schema, paginate.Options{
		Args:         paginate.Args{Where: base, Include: include},
		SearchFields: contactSearchFields,
	})
}

func without(query url.Values, keys ...string) url.Values {
	out := make(url.Values, len(query))
	for k, v := range query {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
