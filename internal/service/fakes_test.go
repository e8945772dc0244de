package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/directory-service/internal/model"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

type fakeCompanyRepo struct {
	items     map[uuid.UUID]model.Company
	createErr error
	countErr  error
	lastWhere paginate.Where
	lastFind  paginate.Criteria
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{items: map[uuid.UUID]model.Company{}}
}

func (f *fakeCompanyRepo) Create(_ context.Context, c model.Company) (model.Company, error) {
	if f.createErr != nil {
		return model.Company{}, f.createErr
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (model.Company, error) {
	c, ok := f.items[id]
	if !ok {
		return model.Company{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeCompanyRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeCompanyRepo) Count(_ context.Context, w paginate.Where) (int, error) {
	f.lastWhere = w
	return len(f.items), f.countErr
}

func (f *fakeCompanyRepo) FindMany(_ context.Context, c paginate.Criteria) ([]model.Company, error) {
	f.lastFind = c
	out := make([]model.Company, 0, len(f.items))
	for _, v := range f.items {
		out = append(out, v)
	}
	return out, nil
}

var _ repository.CompanyRepository = (*fakeCompanyRepo)(nil)

type fakeContactRepo struct {
	items     map[uuid.UUID]model.Contact
	createErr error
	// events, when set, records creates and the invalidation they schedule.
	events    *[]string
	lastWhere paginate.Where
	lastFind  paginate.Criteria
	finds     int
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{items: map[uuid.UUID]model.Contact{}}
}

func (f *fakeContactRepo) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	if f.createErr != nil {
		return model.Contact{}, f.createErr
	}
	c.ID = uuid.New()
	f.items[c.ID] = c
	record(f.events, "create")
	repository.AfterCommit(ctx, func(context.Context) { record(f.events, "invalidate") })
	return c, nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id uuid.UUID) (model.Contact, error) {
	c, ok := f.items[id]
	if !ok {
		return model.Contact{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeContactRepo) Count(_ context.Context, w paginate.Where) (int, error) {
	f.lastWhere = w
	return len(f.items), nil
}

func (f *fakeContactRepo) FindMany(_ context.Context, c paginate.Criteria) ([]model.Contact, error) {
	f.finds++
	f.lastFind = c
	return nil, nil
}

var _ repository.ContactRepository = (*fakeContactRepo)(nil)

// inlineTx runs fn without a real transaction, counts invocations and fires
// AfterCommit hooks once fn succeeds.
type inlineTx struct {
	calls  int
	events *[]string
}

func (t *inlineTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	t.calls++
	ctx, afterCommit := repository.WithCommitHooks(ctx)
	if err := fn(ctx); err != nil {
		return err
	}
	record(t.events, "commit")
	afterCommit()
	return nil
}

func record(events *[]string, e string) {
	if events != nil {
		*events = append(*events, e)
	}
}

type recordingObserver struct {
	resources []string
	totals    []int
	errs      []error
}

func (o *recordingObserver) ObserveList(resource string, _ time.Duration, total int, err error) {
	o.resources = append(o.resources, resource)
	o.totals = append(o.totals, total)
	o.errs = append(o.errs, err)
}
