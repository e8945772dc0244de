package service_test

import (
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/internal/service"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

type contactFixture struct {
	svc       service.ContactService
	contacts  *fakeContactRepo
	companies *fakeCompanyRepo
	tx        *inlineTx
}

func newContactFixture() contactFixture {
	f := contactFixture{contacts: newFakeContactRepo(), companies: newFakeCompanyRepo(), tx: &inlineTx{}}
	f.svc = service.NewContactService(f.contacts, f.companies, f.tx, service.ListOptions{}, zerolog.New(io.Discard))
	return f
}

func (f contactFixture) company(t *testing.T) model.Company {
	t.Helper()
	c, err := f.companies.Create(context.Background(), model.Company{Name: "Acme"})
	require.NoError(t, err)
	return c
}

func TestContactService_CreateContact_Validation(t *testing.T) {
	f := newContactFixture()

	cases := []struct {
		name       string
		input      service.CreateContactInput
		wantFields []string
	}{
		{"missing first name", service.CreateContactInput{}, []string{"first_name"}},
		{"bad email", service.CreateContactInput{FirstName: "Ann", Email: "not-an-email"}, []string{"email"}},
		{"bad status", service.CreateContactInput{FirstName: "Ann", Status: "deleted"}, []string{"status"}},
		{"bad company id", service.CreateContactInput{FirstName: "Ann", CompanyID: "7"}, []string{"company_id"}},
		{"several", service.CreateContactInput{Email: "x@", Status: "nope"}, []string{"first_name", "email", "status"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateContact(context.Background(), tc.input)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			var got []string
			for _, fe := range service.FieldErrors(err) {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tc.wantFields, got)
		})
	}
	assert.Zero(t, f.tx.calls, "validation must fail before opening a transaction")
}

func TestContactService_CreateContact_Normalizes(t *testing.T) {
	f := newContactFixture()
	co := f.company(t)

	out, err := f.svc.CreateContact(context.Background(), service.CreateContactInput{
		CompanyID: co.ID.String(),
		FirstName: " Ann ",
		Email:     " Ann@Example.COM ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", out.FirstName)
	assert.Equal(t, "ann@example.com", out.Email)
	assert.Equal(t, model.StatusActive, out.Status)
	assert.Equal(t, uuid.NullUUID{UUID: co.ID, Valid: true}, out.CompanyID)
	assert.Equal(t, 1, f.tx.calls)
}

func TestContactService_CreateContact_UnknownCompany(t *testing.T) {
	f := newContactFixture()

	_, err := f.svc.CreateContact(context.Background(), service.CreateContactInput{
		CompanyID: uuid.NewString(),
		FirstName: "Ann",
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, "company_id", service.FieldErrors(err)[0].Field)
	assert.Empty(t, f.contacts.items)
}

func TestContactService_CreateContact_RepoError(t *testing.T) {
	f := newContactFixture()
	f.contacts.createErr = repository.ErrAlreadyExists

	_, err := f.svc.CreateContact(context.Background(), service.CreateContactInput{FirstName: "Ann", Email: "a@b.test"})
	assert.Equal(t, repository.ErrAlreadyExists, err)
}

func TestContactService_CreateContact_InvalidatesAfterCommit(t *testing.T) {
	f := newContactFixture()
	var events []string
	f.tx.events = &events
	f.contacts.events = &events
	co := f.company(t)

	_, err := f.svc.CreateContact(context.Background(), service.CreateContactInput{
		CompanyID: co.ID.String(),
		FirstName: "Ann",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "commit", "invalidate"}, events)
}

func TestContactService_GetContact(t *testing.T) {
	f := newContactFixture()
	created, err := f.svc.CreateContact(context.Background(), service.CreateContactInput{FirstName: "Ann"})
	require.NoError(t, err)

	got, err := f.svc.GetContact(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.svc.GetContact(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.GetContact(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestContactService_ListContacts_IncludeAndEmptyDocs(t *testing.T) {
	f := newContactFixture()

	env, err := f.svc.ListContacts(context.Background(), url.Values{
		"include": {"company"}, "status[]": {"active", "invited"}, "Sort_last_name": {"asc"},
	})
	require.NoError(t, err)
	assert.NotNil(t, env.Docs)
	assert.Empty(t, env.Docs)
	assert.Equal(t, 0, env.LastPage)

	assert.Equal(t, []string{repository.RelationCompany}, f.contacts.lastFind.Include)
	assert.Equal(t, []paginate.Cond{{Field: "status", Op: paginate.OpIn, Value: []any{"active", "invited"}}}, f.contacts.lastWhere.Conds)
	assert.Equal(t, []paginate.Order{{Field: "last_name", Dir: paginate.Asc}}, f.contacts.lastFind.OrderBy)
}

func TestContactService_ListContacts_UnknownInclude(t *testing.T) {
	f := newContactFixture()

	_, err := f.svc.ListContacts(context.Background(), url.Values{"include": {"company,secrets"}})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, "include", service.FieldErrors(err)[0].Field)
	assert.Zero(t, f.contacts.finds)
}

func TestContactService_ListContacts_BadFilterValue(t *testing.T) {
	f := newContactFixture()

	_, err := f.svc.ListContacts(context.Background(), url.Values{"company_id": {"not-a-uuid"}})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, "company_id", service.FieldErrors(err)[0].Field)
}

func TestContactService_ListCompanyContacts(t *testing.T) {
	f := newContactFixture()
	co := f.company(t)

	_, err := f.svc.ListCompanyContacts(context.Background(), co.ID.String(), url.Values{
		"company_id": {uuid.NewString()}, "status": {"active"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []paginate.Cond{
		{Field: "company_id", Op: paginate.OpEq, Value: co.ID},
		{Field: "status", Op: paginate.OpEq, Value: "active"},
	}, f.contacts.lastWhere.Conds)

	_, err = f.svc.ListCompanyContacts(context.Background(), uuid.NewString(), url.Values{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.ListCompanyContacts(context.Background(), "x", url.Values{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestContactService_ListReachableContacts_SearchCrossProduct(t *testing.T) {
	f := newContactFixture()

	_, err := f.svc.ListReachableContacts(context.Background(), url.Values{"search": {"ann"}})
	require.NoError(t, err)

	w := f.contacts.lastWhere
	require.Len(t, w.Or, 2)
	for i, field := range []string{"email", "phone"} {
		g, ok := w.Or[i].(paginate.Group)
		require.True(t, ok)
		assert.Equal(t, paginate.LogicAnd, g.Logic)
		require.Len(t, g.Exprs, 2)
		assert.Equal(t, paginate.Cond{Field: field, Op: paginate.OpNe, Value: ""}, g.Exprs[0])
		search, ok := g.Exprs[1].(paginate.Group)
		require.True(t, ok)
		assert.Equal(t, paginate.LogicOr, search.Logic)
		assert.Len(t, search.Exprs, 4)
	}
}
