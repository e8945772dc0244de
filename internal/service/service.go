// Package service holds the company and contact use cases: input
// validation, orchestration across repositories and list query handling.
package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// fromQueryError reshapes a *paginate.QueryError into the aggregated
// validation error; other errors pass through.
func fromQueryError(err error) error {
	var qe *paginate.QueryError
	if !errors.As(err, &qe) {
		return err
	}
	fe := make([]FieldError, 0, len(qe.Issues))
	for _, is := range qe.Issues {
		fe = append(fe, FieldError{Field: is.Field, Message: is.Message})
	}
	return newInvalidInput(fe)
}

// ListObserver receives the outcome of every list query. *metrics.Metrics implements it.
type ListObserver interface {
	ObserveList(resource string, took time.Duration, total int, err error)
}

// ListOptions tunes every list use case.
type ListOptions struct {
	MaxLimit int
	Strict   bool
	Observer ListObserver
}

// CreateCompanyInput is the payload for CreateCompany.
type CreateCompanyInput struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// CreateContactInput is the payload for CreateContact. CompanyID and Status are optional.
type CreateContactInput struct {
	CompanyID string `json:"company_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
}

// CompanyService defines company-oriented use cases.
type CompanyService interface {
	CreateCompany(ctx context.Context, in CreateCompanyInput) (model.Company, error)
	GetCompany(ctx context.Context, id string) (model.Company, error)
	ListCompanies(ctx context.Context, query url.Values) (paginate.Envelope[model.Company], error)
}

// ContactService defines contact-oriented use cases. List queries accept
// include=company to embed each contact's company.
type ContactService interface {
	CreateContact(ctx context.Context, in CreateContactInput) (model.Contact, error)
	GetContact(ctx context.Context, id string) (model.Contact, error)
	ListContacts(ctx context.Context, query url.Values) (paginate.Envelope[model.Contact], error)
	ListCompanyContacts(ctx context.Context, companyID string, query url.Values) (paginate.Envelope[model.Contact], error)
	// ListReachableContacts lists contacts that have an email or a phone.
	ListReachableContacts(ctx context.Context, query url.Values) (paginate.Envelope[model.Contact], error)
}
