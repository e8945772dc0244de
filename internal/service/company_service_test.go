package service_test

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/internal/service"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

func TestCompanyService_CreateCompany_Validation(t *testing.T) {
	svc := service.NewCompanyService(newFakeCompanyRepo(), service.ListOptions{}, zerolog.New(io.Discard))

	cases := []struct {
		name      string
		input     service.CreateCompanyInput
		wantField string
	}{
		{"empty", service.CreateCompanyInput{Name: ""}, "name"},
		{"spaces", service.CreateCompanyInput{Name: "   "}, "name"},
		{"too short", service.CreateCompanyInput{Name: "A"}, "name"},
		{"too long", service.CreateCompanyInput{Name: strings.Repeat("x", 101)}, "name"},
		{"industry too long", service.CreateCompanyInput{Name: "Acme", Industry: strings.Repeat("x", 101)}, "industry"},
		{"ok", service.CreateCompanyInput{Name: "  Acme  ", Industry: "retail"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := svc.CreateCompany(context.Background(), tc.input)
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "Acme", out.Name)
				return
			}
			require.ErrorIs(t, err, service.ErrInvalidInput)
			fe := service.FieldErrors(err)
			require.Len(t, fe, 1)
			assert.Equal(t, tc.wantField, fe[0].Field)
		})
	}
}

func TestCompanyService_CreateCompany_RepoErrorPassesThrough(t *testing.T) {
	repo := newFakeCompanyRepo()
	repo.createErr = repository.ErrAlreadyExists
	svc := service.NewCompanyService(repo, service.ListOptions{}, zerolog.New(io.Discard))

	_, err := svc.CreateCompany(context.Background(), service.CreateCompanyInput{Name: "Dup"})
	assert.Equal(t, repository.ErrAlreadyExists, err)
}

func TestCompanyService_GetCompany(t *testing.T) {
	repo := newFakeCompanyRepo()
	svc := service.NewCompanyService(repo, service.ListOptions{}, zerolog.New(io.Discard))
	created, err := svc.CreateCompany(context.Background(), service.CreateCompanyInput{Name: "Acme"})
	require.NoError(t, err)

	got, err := svc.GetCompany(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetCompany(context.Background(), "42")
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, "id", service.FieldErrors(err)[0].Field)
}

func TestCompanyService_ListCompanies(t *testing.T) {
	repo := newFakeCompanyRepo()
	obs := &recordingObserver{}
	svc := service.NewCompanyService(repo, service.ListOptions{MaxLimit: 5, Observer: obs}, zerolog.New(io.Discard))
	for _, n := range []string{"Acme", "Globex", "Initech"} {
		_, err := svc.CreateCompany(context.Background(), service.CreateCompanyInput{Name: n})
		require.NoError(t, err)
	}

	env, err := svc.ListCompanies(context.Background(), url.Values{
		"limit": {"50"}, "search": {"ac"}, "industry": {"retail"}, "bogus": {"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, env.Limit)
	assert.Equal(t, 3, env.TotalDocs)
	assert.Equal(t, 1, env.LastPage)
	assert.Len(t, env.Docs, 3)

	assert.Equal(t, []paginate.Cond{{Field: "industry", Op: paginate.OpEq, Value: "retail"}}, repo.lastWhere.Conds)
	assert.Len(t, repo.lastWhere.Or, 2)
	assert.Equal(t, []paginate.Order{{Field: "created_at", Dir: paginate.Desc}}, repo.lastFind.OrderBy)

	assert.Equal(t, []string{"companies"}, obs.resources)
	assert.Equal(t, []int{3}, obs.totals)
}

func TestCompanyService_ListCompanies_StrictRejectsUnknownKeys(t *testing.T) {
	svc := service.NewCompanyService(newFakeCompanyRepo(), service.ListOptions{Strict: true}, zerolog.New(io.Discard))

	_, err := svc.ListCompanies(context.Background(), url.Values{"bogus": {"x"}, "Sort_name": {"up"}})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	fields := map[string]bool{}
	for _, fe := range service.FieldErrors(err) {
		fields[fe.Field] = true
	}
	assert.True(t, fields["bogus"])
	assert.True(t, fields["Sort_name"])
}

func TestCompanyService_ListCompanies_StoreErrorReturned(t *testing.T) {
	repo := newFakeCompanyRepo()
	boom := errors.New("db down")
	repo.countErr = boom
	obs := &recordingObserver{}
	svc := service.NewCompanyService(repo, service.ListOptions{Observer: obs}, zerolog.New(io.Discard))

	_, err := svc.ListCompanies(context.Background(), url.Values{})
	assert.Equal(t, boom, err)
	require.Len(t, obs.errs, 1)
	assert.Equal(t, boom, obs.errs[0])
}

func TestCompanySchema_CarriesOptions(t *testing.T) {
	s := service.CompanySchema(service.ListOptions{MaxLimit: 25, Strict: true})
	assert.Equal(t, 25, s.MaxLimit)
	assert.True(t, s.Strict)
	assert.Equal(t, paginate.KindUUID, s.Filters["id"])
}
