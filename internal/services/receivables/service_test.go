package receivables

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/store"
	"zarmind-system/internal/store/memstore"
)

type fixture struct {
	svc        *Service
	store      *memstore.Store
	customerID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	f := &fixture{
		svc:        New(st, nil),
		store:      st,
		customerID: uuid.NewString(),
	}
	st.SeedCustomer(models.Customer{ID: f.customerID, Name: "Leila Ahmadi", IsActive: true})
	return f
}

func TestCreateDerivesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ar, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivablePending, ar.Status)
	assert.True(t, ar.RemainingAmount.Equal(decimal.NewFromInt(500)))

	ar, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(500),
		PaidAmount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivablePartial, ar.Status)
	assert.True(t, ar.RemainingAmount.Equal(decimal.NewFromInt(300)))

	ar, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(500),
		PaidAmount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivablePaid, ar.Status)
	assert.True(t, ar.RemainingAmount.IsZero())
}

func TestCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{
		CustomerID: uuid.NewString(),
		Amount:     decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(100),
		PaidAmount: decimal.NewFromInt(150),
	})
	assert.ErrorIs(t, err, domain.ErrOverpayment)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ar, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	ar, err = f.svc.RecordPayment(ctx, ar.ID, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivablePartial, ar.Status)
	assert.True(t, ar.PaidAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, ar.RemainingAmount.Equal(decimal.NewFromInt(300)))

	_, err = f.svc.RecordPayment(ctx, ar.ID, decimal.NewFromInt(400))
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	ar, err = f.svc.RecordPayment(ctx, ar.ID, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivablePaid, ar.Status)
	assert.True(t, ar.RemainingAmount.IsZero())
}

func TestRecordPaymentUnknownReceivable(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAmountBelowPaidRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ar, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(500),
		PaidAmount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	smaller := decimal.NewFromInt(200)
	_, err = f.svc.Update(ctx, ar.ID, UpdateInput{Amount: &smaller})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	larger := decimal.NewFromInt(600)
	ar, err = f.svc.Update(ctx, ar.ID, UpdateInput{Amount: &larger})
	require.NoError(t, err)
	assert.True(t, ar.RemainingAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, domain.ReceivablePartial, ar.Status)
}

func TestListOverdueFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	overdue, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(100),
		DueDate:    &past,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(100),
		DueDate:    &future,
	})
	require.NoError(t, err)

	// Paid rows are never overdue even past their due date.
	_, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(100),
		PaidAmount: decimal.NewFromInt(100),
		DueDate:    &past,
	})
	require.NoError(t, err)

	rows, total, err := f.svc.List(ctx, store.ReceivableFilter{Overdue: true, Now: now})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, overdue.ID, rows[0].ID)
}

func TestMarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Hour)

	ar, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(100),
		DueDate:    &past,
	})
	require.NoError(t, err)

	marked, err := f.svc.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	reloaded, err := f.svc.Get(ctx, ar.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReceivableOverdue, reloaded.Status)

	// A second sweep finds nothing new to stamp.
	marked, err = f.svc.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := time.Now().Add(-24 * time.Hour)

	_, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(500),
		PaidAmount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(300),
		DueDate:    &past,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(200),
		PaidAmount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	summary, err := f.svc.Summarize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Count)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(400)))
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(600)))
	assert.EqualValues(t, 1, summary.OverdueCount)
	assert.True(t, summary.OverdueAmount.Equal(decimal.NewFromInt(300)))
	assert.EqualValues(t, 1, summary.ByStatus[domain.ReceivablePartial])
	assert.EqualValues(t, 1, summary.ByStatus[domain.ReceivablePending])
	assert.EqualValues(t, 1, summary.ByStatus[domain.ReceivablePaid])
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ar, err := f.svc.Create(ctx, CreateInput{
		CustomerID: f.customerID,
		Amount:     decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, ar.ID))
	_, err = f.svc.Get(ctx, ar.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Remove(ctx, uuid.NewString()), domain.ErrNotFound)
}
