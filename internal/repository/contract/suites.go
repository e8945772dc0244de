package contract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

type CompanyFactory func(t *testing.T) (repository.CompanyRepository, func())

type ContactFactory func(t *testing.T) (contacts repository.ContactRepository, companies repository.CompanyRepository, cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, companies repository.CompanyRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

var contactSchema = paginate.Schema{
	Filters: map[string]paginate.Kind{
		"status":     paginate.KindString,
		"company_id": paginate.KindUUID,
		"email":      paginate.KindString,
	},
	Sortable: []string{"last_name", "first_name", "created_at"},
}

func RunCompanyRepositoryContract(t *testing.T, makeRepo CompanyFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Company{Name: "Acme", Industry: "retail"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != "Acme" || got.Industry != "retail" {
			t.Fatalf("mismatch: %+v", got)
		}
		if got.CreatedAt.IsZero() {
			t.Fatalf("created_at not stored: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.New())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("exists", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Company{Name: "Initech"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ok, err := repo.Exists(ctx, created.ID)
		if err != nil || !ok {
			t.Fatalf("expected exists, got ok=%v err=%v", ok, err)
		}
		ok, err = repo.Exists(ctx, uuid.New())
		if err != nil || ok {
			t.Fatalf("expected missing, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Company{Name: "Dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Company{Name: "Dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("paginate_with_search", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if _, err := repo.Create(ctx, model.Company{Name: fmt.Sprintf("Globex %d", i)}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		if _, err := repo.Create(ctx, model.Company{Name: "Umbrella"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		env, err := paginate.Paginate[model.Company](ctx, repo, paginate.Options{
			Query:        url.Values{"search": {"globex"}, "limit": {"2"}, "page": {"3"}},
			SearchFields: []string{"name"},
			Schema:       paginate.Schema{Sortable: []string{"name"}},
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 5 || env.LastPage != 3 || len(env.Docs) != 1 || env.Offset != 4 {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})
}

func RunContactRepositoryContract(t *testing.T, makeRepo ContactFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		contacts, companies, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		co, err := companies.Create(ctx, model.Company{Name: "Hooli"})
		if err != nil {
			t.Fatalf("seed company: %v", err)
		}
		created, err := contacts.Create(ctx, model.Contact{
			CompanyID: uuid.NullUUID{UUID: co.ID, Valid: true},
			FirstName: "Gavin", LastName: "Belson", Email: "gavin@hooli.test", Status: model.StatusActive,
		})
		if err != nil {
			t.Fatalf("create contact: %v", err)
		}
		got, err := contacts.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != created.ID || !got.CompanyID.Valid || got.CompanyID.UUID != co.ID || got.Email != "gavin@hooli.test" {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("create_without_company", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := contacts.Create(ctx, model.Contact{FirstName: "Solo", Status: model.StatusInvited})
		if err != nil {
			t.Fatalf("create contact: %v", err)
		}
		got, err := contacts.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.CompanyID.Valid {
			t.Fatalf("expected null company, got %+v", got.CompanyID)
		}
	})

	t.Run("create_unknown_company_conflict", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := contacts.Create(context.Background(), model.Contact{
			CompanyID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
			FirstName: "Ghost", Status: model.StatusActive,
		})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := contacts.GetByID(context.Background(), uuid.New())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("paging_is_stable", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedContacts(t, contacts, 7, uuid.NullUUID{})

		seen := map[uuid.UUID]bool{}
		for page := 1; page <= 3; page++ {
			env, err := paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
				Query:  url.Values{"limit": {"3"}, "page": {fmt.Sprint(page)}},
				Schema: contactSchema,
			})
			if err != nil {
				t.Fatalf("page %d: %v", page, err)
			}
			if env.TotalDocs != 7 || env.LastPage != 3 {
				t.Fatalf("unexpected envelope on page %d: %+v", page, env)
			}
			for _, c := range env.Docs {
				if seen[c.ID] {
					t.Fatalf("contact %s returned twice", c.ID)
				}
				seen[c.ID] = true
			}
		}
		if len(seen) != 7 {
			t.Fatalf("expected 7 distinct contacts, got %d", len(seen))
		}
	})

	t.Run("filter_in_and_sort", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mustCreate(t, contacts, model.Contact{FirstName: "A", LastName: "Zed", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "B", LastName: "Young", Status: model.StatusInvited})
		mustCreate(t, contacts, model.Contact{FirstName: "C", LastName: "Xu", Status: model.StatusArchived})

		env, err := paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Query:  url.Values{"status[]": {"active", "invited"}, "Sort_last_name": {"asc"}},
			Schema: contactSchema,
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 2 || len(env.Docs) != 2 {
			t.Fatalf("unexpected envelope: %+v", env)
		}
		if env.Docs[0].LastName != "Young" || env.Docs[1].LastName != "Zed" {
			t.Fatalf("unexpected order: %s, %s", env.Docs[0].LastName, env.Docs[1].LastName)
		}
	})

	t.Run("search_tokens_case_insensitive", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mustCreate(t, contacts, model.Contact{FirstName: "Alice", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "Bob", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "Carol", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "100%", Status: model.StatusActive})

		env, err := paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Query:        url.Values{"search": {"  ALI   bob "}},
			SearchFields: []string{"first_name", "last_name"},
			Schema:       contactSchema,
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 2 {
			t.Fatalf("expected 2 matches, got %+v", env)
		}

		env, err = paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Query:        url.Values{"search": {"%"}},
			SearchFields: []string{"first_name"},
			Schema:       contactSchema,
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 1 || env.Docs[0].FirstName != "100%" {
			t.Fatalf("expected literal %% match only, got %+v", env)
		}
	})

	t.Run("or_branches_with_search", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mustCreate(t, contacts, model.Contact{FirstName: "Dana", Email: "dana@x.test", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "Dan", Phone: "+100", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "Danny", Status: model.StatusActive})
		mustCreate(t, contacts, model.Contact{FirstName: "Eve", Email: "eve@x.test", Status: model.StatusActive})

		env, err := paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Args: paginate.Args{Where: paginate.Where{Or: []paginate.Expr{
				paginate.Cond{Field: "email", Op: paginate.OpNe, Value: ""},
				paginate.Cond{Field: "phone", Op: paginate.OpNe, Value: ""},
			}}},
			Query:        url.Values{"search": {"dan"}},
			SearchFields: []string{"first_name"},
			Schema:       contactSchema,
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 2 {
			t.Fatalf("expected Dana and Dan, got %+v", env)
		}
	})

	t.Run("created_range", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedContacts(t, contacts, 3, uuid.NullUUID{})

		tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)
		env, err := paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Query:  url.Values{"startDate": {tomorrow}},
			Schema: contactSchema,
			Now:    func() time.Time { return time.Now().AddDate(0, 0, 2) },
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 0 || len(env.Docs) != 0 {
			t.Fatalf("expected empty range, got %+v", env)
		}

		env, err = paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Query:  url.Values{"endDate": {tomorrow}},
			Schema: contactSchema,
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		if env.TotalDocs != 3 {
			t.Fatalf("expected all contacts in range, got %+v", env)
		}
	})

	t.Run("include_company", func(t *testing.T) {
		contacts, companies, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		co, err := companies.Create(ctx, model.Company{Name: "Pied Piper"})
		if err != nil {
			t.Fatalf("seed company: %v", err)
		}
		seedContacts(t, contacts, 2, uuid.NullUUID{UUID: co.ID, Valid: true})
		mustCreate(t, contacts, model.Contact{FirstName: "Loner", Status: model.StatusActive})

		env, err := paginate.Paginate[model.Contact](ctx, contacts, paginate.Options{
			Args:   paginate.Args{Include: []string{repository.RelationCompany}},
			Query:  url.Values{},
			Schema: contactSchema,
		})
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		withCompany := 0
		for _, c := range env.Docs {
			if c.Company == nil {
				if c.CompanyID.Valid {
					t.Fatalf("company missing for %+v", c)
				}
				continue
			}
			if c.Company.Name != "Pied Piper" {
				t.Fatalf("wrong company: %+v", c.Company)
			}
			withCompany++
		}
		if withCompany != 2 {
			t.Fatalf("expected 2 contacts with company, got %d", withCompany)
		}
	})

	t.Run("company_filter", func(t *testing.T) {
		contacts, companies, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		co, err := companies.Create(ctx, model.Company{Name: "Aviato"})
		if err != nil {
			t.Fatalf("seed company: %v", err)
		}
		seedContacts(t, contacts, 2, uuid.NullUUID{UUID: co.ID, Valid: true})
		mustCreate(t, contacts, model.Contact{FirstName: "Other", Status: model.StatusActive})

		n, err := contacts.Count(ctx, paginate.Where{Conds: []paginate.Cond{
			{Field: "company_id", Op: paginate.OpEq, Value: co.ID},
		}})
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 2 {
			t.Fatalf("expected 2, got %d", n)
		}
	})

	t.Run("unknown_field_rejected", func(t *testing.T) {
		contacts, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := contacts.Count(context.Background(), paginate.Where{Conds: []paginate.Cond{
			{Field: "password", Op: paginate.OpEq, Value: "x"},
		}})
		if !errors.Is(err, repository.ErrUnknownField) {
			t.Fatalf("expected ErrUnknownField, got %v", err)
		}
		_, err = contacts.FindMany(context.Background(), paginate.Criteria{
			OrderBy: []paginate.Order{{Field: "password", Dir: paginate.Asc}},
			Take:    10,
		})
		if !errors.Is(err, repository.ErrUnknownField) {
			t.Fatalf("expected ErrUnknownField, got %v", err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, companies, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID uuid.UUID
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := companies.Create(ctx, model.Company{Name: "TxCommit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := companies.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, companies, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID uuid.UUID
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := companies.Create(ctx, model.Company{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := companies.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		tx, companies, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID uuid.UUID
		errMarker := errors.New("outer failed")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := tx.WithinTx(ctx, func(ctx context.Context) error {
				out, err := companies.Create(ctx, model.Company{Name: "TxNested"})
				createdID = out.ID
				return err
			}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := companies.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("inner write should roll back with outer, got %v", err)
		}
	})

	t.Run("after_commit_hooks", func(t *testing.T) {
		tx, companies, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		var fired []string
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := companies.Create(ctx, model.Company{Name: "TxHookCommit"}); err != nil {
				return err
			}
			repository.AfterCommit(ctx, func(context.Context) { fired = append(fired, "commit") })
			if len(fired) != 0 {
				t.Fatalf("hook fired before commit")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if len(fired) != 1 {
			t.Fatalf("expected hook to fire once after commit, got %v", fired)
		}

		_ = tx.WithinTx(ctx, func(ctx context.Context) error {
			repository.AfterCommit(ctx, func(context.Context) { fired = append(fired, "rollback") })
			return errors.New("abort")
		})
		if len(fired) != 1 {
			t.Fatalf("hook of a rolled back transaction fired: %v", fired)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

func mustCreate(t *testing.T, repo repository.ContactRepository, c model.Contact) model.Contact {
	t.Helper()
	out, err := repo.Create(context.Background(), c)
	if err != nil {
		t.Fatalf("seed contact %s: %v", c.FirstName, err)
	}
	return out
}

func seedContacts(t *testing.T, repo repository.ContactRepository, n int, company uuid.NullUUID) {
	t.Helper()
	for i := 0; i < n; i++ {
		mustCreate(t, repo, model.Contact{
			CompanyID: company,
			FirstName: "Seed",
			LastName:  fmt.Sprintf("N%02d", i),
			Email:     fmt.Sprintf("seed-%s@example.test", uuid.NewString()),
			Status:    model.StatusActive,
		})
	}
}
