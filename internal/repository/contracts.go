package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

// Pinger is the readiness probe of a storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// Repositories called with its ctx join the transaction.
type TxFunc func(ctx context.Context) error

// TxManager runs fn in a transaction. Nested calls join the outer one.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// CompanyRepository declares persistence operations for companies.
// Count and FindMany make it a paginate.Store, so list endpoints page through it directly.
type CompanyRepository interface {
	Create(ctx context.Context, c model.Company) (model.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Company, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	paginate.Store[model.Company]
}

// ContactRepository declares persistence operations for contacts.
// FindMany honors the RelationCompany include.
type ContactRepository interface {
	Create(ctx context.Context, c model.Contact) (model.Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Contact, error)
	paginate.Store[model.Contact]
}

// RelationCompany embeds a contact's company.
const RelationCompany = "company"
