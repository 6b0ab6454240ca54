package quotation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/core/sequence"
	"fabriq/internal/core/types"
	"fabriq/internal/domain"
	"fabriq/internal/domain/invoice"
)

// --- Test doubles ---

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu    sync.Mutex
	byID  map[id.ID]*Quotation
	byNum map[string]id.ID

	updateErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:  make(map[id.ID]*Quotation),
		byNum: make(map[string]id.ID),
	}
}

func (r *memRepo) Create(_ context.Context, q *Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *q
	r.byID[q.ID] = &cp
	r.byNum[q.Number] = q.ID
	return nil
}

func (r *memRepo) GetByID(_ context.Context, quotationID id.ID) (*Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.byID[quotationID]
	if !ok {
		return nil, apperror.NewNotFound("quotation", quotationID)
	}
	cp := *q
	return &cp, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	r.mu.Lock()
	quotationID, ok := r.byNum[number]
	r.mu.Unlock()
	if !ok {
		return nil, apperror.NewNotFound("quotation", number)
	}
	return r.GetByID(ctx, quotationID)
}

func (r *memRepo) Update(_ context.Context, q *Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[q.ID]; !ok {
		return apperror.NewNotFound("quotation", q.ID)
	}
	cp := *q
	r.byID[q.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, quotationID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.byID[quotationID]
	if !ok {
		return apperror.NewNotFound("quotation", quotationID)
	}
	q.MarkDeleted()
	return nil
}

func (r *memRepo) List(_ context.Context, filter ListFilter) (domain.ListResult[*Quotation], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Quotation
	for _, q := range r.byID {
		if filter.Status != nil && q.Status != *filter.Status {
			continue
		}
		cp := *q
		items = append(items, &cp)
	}
	return domain.ListResult[*Quotation]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// passTx runs the callback without a real transaction.
type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// spyAudit records audit calls.
type spyAudit struct {
	mu          sync.Mutex
	transitions []string
	burned      []string
}

func (a *spyAudit) RecordTransition(_ context.Context, _ id.ID, number string, from, to Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transitions = append(a.transitions, fmt.Sprintf("%s:%s->%s", number, from, to))
}

func (a *spyAudit) RecordBurnedNumber(_ context.Context, _ id.ID, number string, _ error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.burned = append(a.burned, number)
}

// --- Fixtures ---

var testNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	repo      *memRepo
	allocator *sequence.MockAllocator
	audit     *spyAudit
	generated []invoice.Request
	genErr    error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemRepo(),
		allocator: sequence.NewMockAllocator(),
		audit:     &spyAudit{},
	}
	gen := invoice.GeneratorFunc(func(_ context.Context, req invoice.Request) (string, error) {
		if f.genErr != nil {
			return "", f.genErr
		}
		f.generated = append(f.generated, req)
		return "/tmp/invoices/" + req.InvoiceNumber + ".pdf", nil
	})
	f.svc = NewService(f.repo, f.allocator, gen, passTx{}, invoice.Profile{
		Creditor: invoice.Party{Name: "Atelier Fabriq"},
		IBAN:     "CH9300762011623852957",
		Currency: "CHF",
	})
	f.svc.SetAuditRecorder(f.audit)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) create(t *testing.T) *Quotation {
	t.Helper()
	q := validQuotation()
	q.Date = time.Time{} // stamped by the service clock
	require.NoError(t, f.svc.Create(context.Background(), q))
	return q
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := validQuotation()
	q.Date = time.Time{} // let the service stamp it
	require.NoError(t, f.svc.Create(ctx, q))

	assert.Equal(t, "DEV-2025-1503-000001-JC", q.Number)
	assert.Equal(t, StatusIssued, q.Status)
	assert.Empty(t, q.InvoiceNumber)

	// Sequential numbers per year, shared across clients.
	q2 := New(q.ClientID, "Marie Durand")
	q2.Date = time.Time{}
	q2.CostBreakdown = q.CostBreakdown
	require.NoError(t, f.svc.Create(ctx, q2))
	assert.Equal(t, "DEV-2025-1503-000002-MD", q2.Number)

	stored, err := f.repo.GetByNumber(ctx, q.Number)
	require.NoError(t, err)
	assert.Equal(t, q.ID, stored.ID)
}

func TestService_Create_InvalidClientName(t *testing.T) {
	f := newFixture(t)

	q := validQuotation()
	q.ClientName = "Cher"
	err := f.svc.Create(context.Background(), q)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidClientName))

	// No number consumed by the rejected create.
	current, err := f.allocator.Current(context.Background(), sequence.KindQuotation, testNow.Year())
	require.NoError(t, err)
	assert.EqualValues(t, 0, current)
}

func TestService_Create_AllocationFailure(t *testing.T) {
	f := newFixture(t)
	f.allocator.AllocateFunc = func(context.Context, sequence.Kind, int) (int64, error) {
		return 0, apperror.NewAllocationFailed(errors.New("disk full"))
	}

	q := validQuotation()
	err := f.svc.Create(context.Background(), q)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAllocationFailed))
	assert.Empty(t, q.Number)
}

func TestService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("accept then cancel", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)

		accepted, err := f.svc.Accept(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, accepted.Status)

		cancelled, err := f.svc.Cancel(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		_, err := f.svc.Cancel(ctx, q.ID)
		require.NoError(t, err)

		_, err = f.svc.Accept(ctx, q.ID)
		assert.True(t, apperror.IsInvalidTransition(err))
		_, err = f.svc.Invoice(ctx, q.ID)
		assert.True(t, apperror.IsInvalidTransition(err))
	})

	t.Run("mark paid requires invoiced", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		_, err := f.svc.MarkPaid(ctx, q.ID)
		assert.True(t, apperror.IsInvalidTransition(err))
	})

	t.Run("transitions are audited", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		_, err := f.svc.Accept(ctx, q.ID)
		require.NoError(t, err)

		require.Len(t, f.audit.transitions, 1)
		assert.Equal(t, q.Number+":issued->accepted", f.audit.transitions[0])
	})
}

func TestService_Invoice(t *testing.T) {
	ctx := context.Background()

	t.Run("from issued", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)

		invoiced, err := f.svc.Invoice(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInvoiced, invoiced.Status)
		assert.Equal(t, "INV-2025-1503-000001-JC", invoiced.InvoiceNumber)

		// Generator saw a snapshot, not the stores.
		require.Len(t, f.generated, 1)
		req := f.generated[0]
		assert.Equal(t, invoiced.InvoiceNumber, req.InvoiceNumber)
		assert.Equal(t, q.Number, req.QuotationNumber)
		assert.Equal(t, q.ClientName, req.Debtor.Name)
		assert.True(t, req.Total.Equal(q.Total))
		assert.NotEmpty(t, req.Lines)
	})

	t.Run("from accepted", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		_, err := f.svc.Accept(ctx, q.ID)
		require.NoError(t, err)

		invoiced, err := f.svc.Invoice(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInvoiced, invoiced.Status)
	})

	t.Run("already invoiced", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		_, err := f.svc.Invoice(ctx, q.ID)
		require.NoError(t, err)

		_, err = f.svc.Invoice(ctx, q.ID)
		assert.True(t, apperror.IsInvalidTransition(err))
	})

	t.Run("incomplete cost breakdown", func(t *testing.T) {
		f := newFixture(t)
		q := New(id.New(), "Jean Castel")
		require.NoError(t, f.svc.Create(ctx, q))

		_, err := f.svc.Invoice(ctx, q.ID)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("generator failure burns the number", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		f.genErr = errors.New("renderer crashed")

		_, err := f.svc.Invoice(ctx, q.ID)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeGenerationFailed))

		// Record unchanged.
		stored, err := f.repo.GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusIssued, stored.Status)
		assert.Empty(t, stored.InvoiceNumber)

		// Number 1 is burned; the retry gets number 2.
		require.Len(t, f.audit.burned, 1)
		assert.Equal(t, "INV-2025-1503-000001-JC", f.audit.burned[0])

		f.genErr = nil
		invoiced, err := f.svc.Invoice(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2025-1503-000002-JC", invoiced.InvoiceNumber)
	})

	t.Run("allocation failure leaves no trace", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		f.allocator.AllocateFunc = func(context.Context, sequence.Kind, int) (int64, error) {
			return 0, apperror.NewAllocationFailed(errors.New("lock timeout"))
		}

		_, err := f.svc.Invoice(ctx, q.ID)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeAllocationFailed))
		assert.Empty(t, f.audit.burned)
		assert.Empty(t, f.generated)
	})

	t.Run("commit failure burns the number", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		f.repo.updateErr = apperror.NewConcurrentModification("quotation", q.ID)

		_, err := f.svc.Invoice(ctx, q.ID)
		require.Error(t, err)
		require.Len(t, f.audit.burned, 1)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("editable states accept changes", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)

		q.MaterialCost = types.MustMoney("99.00")
		require.NoError(t, f.svc.Update(ctx, q))

		stored, err := f.repo.GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.True(t, stored.MaterialCost.Equal(types.MustMoney("99.00")))
		assert.True(t, stored.Total.Equal(q.Total))
	})

	t.Run("invoiced record is frozen", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)
		invoiced, err := f.svc.Invoice(ctx, q.ID)
		require.NoError(t, err)

		invoiced.MaterialCost = types.MustMoney("999999")
		err = f.svc.Update(ctx, invoiced)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		stored, err := f.repo.GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInvoiced, stored.Status)
		assert.True(t, stored.MaterialCost.Equal(q.MaterialCost))
		assert.True(t, stored.Total.Equal(q.Total))
	})

	t.Run("stored status wins over the caller's copy", func(t *testing.T) {
		f := newFixture(t)
		q := f.create(t)

		// Stale copy fetched while the quotation was still editable.
		stale, err := f.svc.GetByID(ctx, q.ID)
		require.NoError(t, err)

		_, err = f.svc.Invoice(ctx, q.ID)
		require.NoError(t, err)

		stale.MaterialCost = types.MustMoney("999999")
		err = f.svc.Update(ctx, stale)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

		stored, err := f.repo.GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInvoiced, stored.Status)
		assert.True(t, stored.Total.Equal(q.Total))
	})
}

func TestService_MarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.create(t)

	_, err := f.svc.Invoice(ctx, q.ID)
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentReceived, paid.Status)
	assert.Equal(t, "INV-2025-1503-000001-JC", paid.InvoiceNumber)

	// Terminal: nothing moves after payment.
	_, err = f.svc.Cancel(ctx, q.ID)
	assert.True(t, apperror.IsInvalidTransition(err))
}
