package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

// RowScanner is satisfied by pgx.Row(s) and *sql.Row(s) alike.
type RowScanner interface {
	Scan(dest ...any) error
}

// Statement is rendered SQL plus its bound args.
type Statement struct {
	SQL  string
	Args []any
}

// CompanyColumns is the filter/sort allow-list for companies.
var CompanyColumns = Columns{
	"id":         "id",
	"name":       "name",
	"industry":   "industry",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ContactColumns is the filter/sort allow-list for contacts; the table is aliased as c.
var ContactColumns = Columns{
	"id":         "c.id",
	"company_id": "c.company_id",
	"first_name": "c.first_name",
	"last_name":  "c.last_name",
	"email":      "c.email",
	"phone":      "c.phone",
	"status":     "c.status",
	"created_at": "c.created_at",
	"updated_at": "c.updated_at",
}

const (
	companySelect = `SELECT id, name, industry, created_at, updated_at FROM companies`
	contactFields = `c.id, c.company_id, c.first_name, c.last_name, c.email, c.phone, c.status, c.created_at, c.updated_at`
	companyJoined = `co.id, co.name, co.industry, co.created_at, co.updated_at`
)

// InsertCompany renders the insert for c. IDs and timestamps are assigned
// here so both drivers store identical values.
func InsertCompany(d Dialect, c model.Company) (model.Company, Statement) {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	b := NewSQLBuilder(d, nil)
	sql := `INSERT INTO companies (id, name, industry, created_at, updated_at) VALUES (` +
		b.Arg(c.ID) + `, ` + b.Arg(c.Name) + `, ` + b.Arg(c.Industry) + `, ` +
		b.Arg(c.CreatedAt) + `, ` + b.Arg(c.UpdatedAt) + `)`
	return c, Statement{SQL: sql, Args: b.Args()}
}

func CompanyByID(d Dialect, id uuid.UUID) Statement {
	b := NewSQLBuilder(d, nil)
	return Statement{SQL: companySelect + ` WHERE id = ` + b.Arg(id), Args: b.Args()}
}

func CompanyExists(d Dialect, id uuid.UUID) Statement {
	b := NewSQLBuilder(d, nil)
	return Statement{SQL: `SELECT EXISTS(SELECT 1 FROM companies WHERE id = ` + b.Arg(id) + `)`, Args: b.Args()}
}

func CountCompanies(d Dialect, w paginate.Where) (Statement, error) {
	b := NewSQLBuilder(d, CompanyColumns)
	where, err := b.Where(w)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: `SELECT COUNT(*) FROM companies` + where, Args: b.Args()}, nil
}

func FindCompanies(d Dialect, c paginate.Criteria) (Statement, error) {
	b := NewSQLBuilder(d, CompanyColumns)
	where, err := b.Where(c.Where)
	if err != nil {
		return Statement{}, err
	}
	order, err := b.OrderBy(c.OrderBy)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: companySelect + where + order + b.Page(c.Take, c.Skip), Args: b.Args()}, nil
}

func ScanCompany(row RowScanner) (model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func InsertContact(d Dialect, c model.Contact) (model.Contact, Statement) {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	b := NewSQLBuilder(d, nil)
	sql := `INSERT INTO contacts (id, company_id, first_name, last_name, email, phone, status, created_at, updated_at) VALUES (` +
		b.Arg(c.ID) + `, ` + b.Arg(c.CompanyID) + `, ` + b.Arg(c.FirstName) + `, ` + b.Arg(c.LastName) + `, ` +
		b.Arg(c.Email) + `, ` + b.Arg(c.Phone) + `, ` + b.Arg(c.Status) + `, ` +
		b.Arg(c.CreatedAt) + `, ` + b.Arg(c.UpdatedAt) + `)`
	return c, Statement{SQL: sql, Args: b.Args()}
}

func ContactByID(d Dialect, id uuid.UUID) Statement {
	b := NewSQLBuilder(d, nil)
	return Statement{
		SQL:  `SELECT ` + contactFields + ` FROM contacts c WHERE c.id = ` + b.Arg(id),
		Args: b.Args(),
	}
}

func CountContacts(d Dialect, w paginate.Where) (Statement, error) {
	b := NewSQLBuilder(d, ContactColumns)
	where, err := b.Where(w)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: `SELECT COUNT(*) FROM contacts c` + where, Args: b.Args()}, nil
}

// FindContacts renders the page query; with RelationCompany included the
// company columns follow the contact columns.
func FindContacts(d Dialect, c paginate.Criteria) (Statement, error) {
	b := NewSQLBuilder(d, ContactColumns)
	where, err := b.Where(c.Where)
	if err != nil {
		return Statement{}, err
	}
	order, err := b.OrderBy(c.OrderBy)
	if err != nil {
		return Statement{}, err
	}
	sql := `SELECT ` + contactFields + ` FROM contacts c`
	if c.Includes(RelationCompany) {
		sql = `SELECT ` + contactFields + `, ` + companyJoined +
			` FROM contacts c LEFT JOIN companies co ON co.id = c.company_id`
	}
	return Statement{SQL: sql + where + order + b.Page(c.Take, c.Skip), Args: b.Args()}, nil
}

// ScanContact reads a row produced by ContactByID or FindContacts.
func ScanContact(row RowScanner, withCompany bool) (model.Contact, error) {
	var c model.Contact
	dest := []any{&c.ID, &c.CompanyID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt}
	if !withCompany {
		return c, row.Scan(dest...)
	}

	var (
		coID                 uuid.NullUUID
		coName, coIndustry   *string
		coCreated, coUpdated *time.Time
	)
	dest = append(dest, &coID, &coName, &coIndustry, &coCreated, &coUpdated)
	if err := row.Scan(dest...); err != nil {
		return model.Contact{}, err
	}
	if coID.Valid {
		c.Company = &model.Company{ID: coID.UUID}
		if coName != nil {
			c.Company.Name = *coName
		}
		if coIndustry != nil {
			c.Company.Industry = *coIndustry
		}
		if coCreated != nil {
			c.Company.CreatedAt = *coCreated
		}
		if coUpdated != nil {
			c.Company.UpdatedAt = *coUpdated
		}
	}
	return c, nil
}
