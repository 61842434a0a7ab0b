package sales

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/events"
	"zarmind-system/internal/services/inventory"
	"zarmind-system/internal/store"
	"zarmind-system/internal/store/memstore"
)

type eventRecorder struct {
	published []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, e events.Event) {
	r.published = append(r.published, e)
}

type fixture struct {
	svc   *Service
	inv   *inventory.Service
	store *memstore.Store

	branchID   string
	customerID string
	userID     string
	goldRing   string
	goldCoin   string
}

func newFixture(t *testing.T, refundRestocks bool) *fixture {
	t.Helper()
	st := memstore.New()
	inv := inventory.New(st, nil, nil)

	f := &fixture{
		svc:        New(st, inv, nil, refundRestocks),
		inv:        inv,
		store:      st,
		branchID:   uuid.NewString(),
		customerID: uuid.NewString(),
		userID:     uuid.NewString(),
		goldRing:   uuid.NewString(),
		goldCoin:   uuid.NewString(),
	}

	st.SeedBranch(models.Branch{ID: f.branchID, Code: "TEH-01", Name: "Tehran Central", IsActive: true})
	st.SeedCustomer(models.Customer{ID: f.customerID, Name: "Leila Ahmadi", IsActive: true})

	qr := "QR-RING-001"
	st.SeedProduct(models.Product{
		ID:           f.goldRing,
		SKU:          "RING-001",
		Name:         "18k Gold Ring",
		QRCode:       &qr,
		Category:     domain.CategoryManufactured,
		Status:       domain.ProductStatusInStock,
		SellingPrice: decimal.NewFromInt(100),
		Quantity:     5,
	})
	st.SeedProduct(models.Product{
		ID:           f.goldCoin,
		SKU:          "COIN-001",
		Name:         "Bahar Azadi Coin",
		Category:     domain.CategoryCoin,
		Status:       domain.ProductStatusInStock,
		SellingPrice: decimal.NewFromInt(50),
		Quantity:     10,
	})
	st.SeedInventory(models.Inventory{
		ID: uuid.NewString(), ProductID: f.goldRing, BranchID: f.branchID,
		Quantity: 5, MinimumStock: 2,
	})
	st.SeedInventory(models.Inventory{
		ID: uuid.NewString(), ProductID: f.goldCoin, BranchID: f.branchID,
		Quantity: 10, MinimumStock: 3,
	})

	return f
}

func (f *fixture) createInput() CreateInput {
	return CreateInput{
		CustomerID:    &f.customerID,
		UserID:        f.userID,
		BranchID:      f.branchID,
		PaymentMethod: domain.PaymentCash,
		Items: []ItemInput{
			{ProductID: f.goldRing, Quantity: 2, GoldPrice: decimal.NewFromInt(100)},
			{ProductID: f.goldCoin, Quantity: 1, GoldPrice: decimal.NewFromInt(50)},
		},
	}
}

func (f *fixture) branchQty(t *testing.T, productID string) int {
	t.Helper()
	row, err := f.store.Inventory().GetRow(context.Background(), productID, f.branchID)
	require.NoError(t, err)
	return row.Quantity
}

func TestCreateDraftPricesSale(t *testing.T) {
	f := newFixture(t, false)

	sale, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)

	assert.Equal(t, domain.SaleStatusDraft, sale.Status)
	assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(250)))
	assert.True(t, sale.PaidAmount.IsZero())
	assert.Len(t, sale.Items, 2)
	assert.True(t, strings.HasPrefix(sale.InvoiceNumber, "INV-"))

	// A draft must not touch stock.
	assert.Equal(t, 5, f.branchQty(t, f.goldRing))
	assert.Equal(t, 10, f.branchQty(t, f.goldCoin))
}

func TestCreateWithTaxAndDiscount(t *testing.T) {
	f := newFixture(t, false)

	in := f.createInput()
	in.TaxAmount = decimal.NewFromFloat(22.50)
	in.DiscountAmount = decimal.NewFromInt(10)

	sale, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromFloat(262.50)), "got %s", sale.TotalAmount)
}

func TestCreateCompletedDecrementsInventory(t *testing.T) {
	f := newFixture(t, false)

	in := f.createInput()
	status := domain.SaleStatusCompleted
	in.Status = &status

	sale, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))
	assert.Equal(t, 9, f.branchQty(t, f.goldCoin))
}

func TestCreateFullPaymentAutoCompletes(t *testing.T) {
	f := newFixture(t, false)

	in := f.createInput()
	in.PaidAmount = decimal.NewFromInt(250)

	sale, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.Len(t, sale.Payments, 1)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))
}

func TestCreateRejectsOverpayment(t *testing.T) {
	f := newFixture(t, false)

	in := f.createInput()
	in.PaidAmount = decimal.NewFromInt(300)

	_, err := f.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrOverpayment)
}

func TestCreateValidatesReferences(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	in := f.createInput()
	in.BranchID = uuid.NewString()
	_, err := f.svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	in = f.createInput()
	unknown := uuid.NewString()
	in.CustomerID = &unknown
	_, err = f.svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	in = f.createInput()
	in.Items[0].ProductID = uuid.NewString()
	_, err = f.svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	in = f.createInput()
	in.Items = nil
	_, err = f.svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateRejectsUnsellableProduct(t *testing.T) {
	f := newFixture(t, false)

	damaged := uuid.NewString()
	f.store.SeedProduct(models.Product{
		ID: damaged, SKU: "DMG-001", Name: "Scratched Bangle",
		Category: domain.CategoryManufactured, Status: domain.ProductStatusDamaged,
		SellingPrice: decimal.NewFromInt(40),
	})

	in := f.createInput()
	in.Items = []ItemInput{{ProductID: damaged, Quantity: 1, GoldPrice: decimal.NewFromInt(40)}}
	_, err := f.svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestCreateKeepsExplicitInvoiceNumber(t *testing.T) {
	f := newFixture(t, false)

	invoice := "INV-CUSTOM-42"
	in := f.createInput()
	in.InvoiceNumber = &invoice

	sale, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, invoice, sale.InvoiceNumber)

	found, err := f.svc.GetByInvoice(context.Background(), invoice)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, found.ID)
}

func TestCreateRejectsDuplicateInvoiceNumber(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	invoice := "INV-DUP-1"
	in := f.createInput()
	in.InvoiceNumber = &invoice
	_, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	in2 := f.createInput()
	in2.InvoiceNumber = &invoice
	_, err = f.svc.Create(ctx, in2)
	assert.ErrorIs(t, err, domain.ErrConstraint)
}

func TestRecordPaymentPartialThenComplete(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	sale, err = f.svc.RecordPayment(ctx, sale.ID, PaymentInput{
		Amount: decimal.NewFromInt(100), PaymentMethod: domain.PaymentCash, ActorID: f.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusDraft, sale.Status)
	assert.True(t, sale.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 5, f.branchQty(t, f.goldRing), "partial payment must not commit stock")

	sale, err = f.svc.RecordPayment(ctx, sale.ID, PaymentInput{
		Amount: decimal.NewFromInt(150), PaymentMethod: domain.PaymentCard, ActorID: f.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.Len(t, sale.Payments, 2)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))
	assert.Equal(t, 9, f.branchQty(t, f.goldCoin))
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, sale.ID, PaymentInput{
		Amount: decimal.NewFromInt(300), PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	reloaded, err := f.svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.PaidAmount.IsZero())
	assert.Empty(t, reloaded.Payments)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, sale.ID, PaymentInput{
		Amount: decimal.Zero, PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRecordPaymentRejectedOnCancelledSale(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, sale.ID, CancelInput{})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, sale.ID, PaymentInput{
		Amount: decimal.NewFromInt(10), PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompleteRejectsSecondCall(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	sale, err = f.svc.Complete(ctx, sale.ID, CompleteInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))

	// A second completion is an invalid state and must not decrement again.
	_, err = f.svc.Complete(ctx, sale.ID, CompleteInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))
}

func TestCompleteAppendsNotes(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	notes := "picked up in store"
	sale, err = f.svc.Complete(ctx, sale.ID, CompleteInput{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, sale.Notes)
	assert.Contains(t, *sale.Notes, "picked up in store")
}

func TestCompleteRejectsCancelledSale(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, sale.ID, CancelInput{})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, sale.ID, CompleteInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompletePublishesStockDecrement(t *testing.T) {
	f := newFixture(t, false)
	rec := &eventRecorder{}
	svc := New(f.store, f.inv, rec, false)
	ctx := context.Background()

	sale, err := svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = svc.Complete(ctx, sale.ID, CompleteInput{})
	require.NoError(t, err)

	var types []string
	for _, e := range rec.published {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.TypeSaleCompleted)
	assert.Contains(t, types, events.TypeStockDecrement)
}

func TestCompletedSaleRecordsScans(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, sale.ID, CompleteInput{})
	require.NoError(t, err)

	scans := f.store.RecordedScans()
	require.Len(t, scans, 1, "only the ring carries a QR code")
	assert.Equal(t, "QR-RING-001", scans[0].QRCode)
	assert.Equal(t, f.goldRing, scans[0].ProductID)
	assert.Equal(t, domain.ScanPurposeSale, scans[0].Purpose)
}

func TestCancelOnlyDrafts(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, sale.ID, CompleteInput{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, sale.ID, CancelInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancelRecordsReason(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	reason := "customer changed mind"
	sale, err = f.svc.Cancel(ctx, sale.ID, CancelInput{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, sale.Status)
	require.NotNil(t, sale.Notes)
	assert.Contains(t, *sale.Notes, "cancelled: customer changed mind")
}

func TestUpdateReprices(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	tax := decimal.NewFromInt(25)
	sale, err = f.svc.Update(ctx, sale.ID, UpdateInput{
		Items: []ItemInput{
			{ProductID: f.goldCoin, Quantity: 3, GoldPrice: decimal.NewFromInt(50)},
		},
		TaxAmount: &tax,
	})
	require.NoError(t, err)
	assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(175)))
	assert.Len(t, sale.Items, 1)
}

func TestUpdateRejectedAfterCompletion(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, sale.ID, CompleteInput{})
	require.NoError(t, err)

	notes := "late edit"
	_, err = f.svc.Update(ctx, sale.ID, UpdateInput{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRefundLifecycle(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	in := f.createInput()
	in.PaidAmount = decimal.NewFromInt(250)
	sale, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	part := decimal.NewFromInt(100)
	sale, err = f.svc.Refund(ctx, sale.ID, RefundInput{Amount: &part, ActorID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusPartiallyRefunded, sale.Status)
	assert.True(t, sale.RefundedAmount.Equal(part))

	// Exceeding the unrefunded remainder is rejected.
	tooMuch := decimal.NewFromInt(200)
	_, err = f.svc.Refund(ctx, sale.ID, RefundInput{Amount: &tooMuch, ActorID: f.userID})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	// A nil amount refunds the remainder.
	sale, err = f.svc.Refund(ctx, sale.ID, RefundInput{ActorID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusRefunded, sale.Status)
	assert.True(t, sale.RefundedAmount.Equal(decimal.NewFromInt(250)))
}

func TestRefundRejectsDraft(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	_, err = f.svc.Refund(ctx, sale.ID, RefundInput{ActorID: f.userID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRefundDoesNotRestockByDefault(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	in := f.createInput()
	in.PaidAmount = decimal.NewFromInt(250)
	sale, err := f.svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))

	_, err = f.svc.Refund(ctx, sale.ID, RefundInput{ActorID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))
	assert.Equal(t, 9, f.branchQty(t, f.goldCoin))
}

func TestRefundRestocksWhenEnabled(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	in := f.createInput()
	in.PaidAmount = decimal.NewFromInt(250)
	sale, err := f.svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 3, f.branchQty(t, f.goldRing))

	_, err = f.svc.Refund(ctx, sale.ID, RefundInput{ActorID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, 5, f.branchQty(t, f.goldRing))
	assert.Equal(t, 10, f.branchQty(t, f.goldCoin))
}

func TestRemoveRules(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	require.NoError(t, f.svc.Remove(ctx, draft.ID))
	_, err = f.svc.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	completed, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, completed.ID, CompleteInput{})
	require.NoError(t, err)
	err = f.svc.Remove(ctx, completed.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	completed, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, completed.ID, CompleteInput{})
	require.NoError(t, err)

	drafts, total, err := f.svc.List(ctx, store.SaleFilter{Status: domain.SaleStatusDraft})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)

	all, total, err := f.svc.List(ctx, store.SaleFilter{CustomerID: f.customerID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	mine, total, err := f.svc.List(ctx, store.SaleFilter{UserID: f.userID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)

	_, total, err = f.svc.List(ctx, store.SaleFilter{UserID: uuid.NewString()})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestListAmountRangeAndSort(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	big, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	in := f.createInput()
	in.Items = []ItemInput{{ProductID: f.goldCoin, Quantity: 1, GoldPrice: decimal.NewFromInt(50)}}
	small, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	min := decimal.NewFromInt(100)
	filtered, total, err := f.svc.List(ctx, store.SaleFilter{MinAmount: &min})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, big.ID, filtered[0].ID)

	max := decimal.NewFromInt(100)
	filtered, _, err = f.svc.List(ctx, store.SaleFilter{MaxAmount: &max})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, small.ID, filtered[0].ID)

	sorted, _, err := f.svc.List(ctx, store.SaleFilter{SortBy: "total_amount", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, small.ID, sorted[0].ID)
	assert.Equal(t, big.ID, sorted[1].ID)

	sorted, _, err = f.svc.List(ctx, store.SaleFilter{SortBy: "total_amount", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, big.ID, sorted[0].ID)
}

func TestSummarize(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)

	in := f.createInput()
	in.PaidAmount = decimal.NewFromInt(250)
	_, err = f.svc.Create(ctx, in)
	require.NoError(t, err)

	cancelled, err := f.svc.Create(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, cancelled.ID, CancelInput{})
	require.NoError(t, err)

	summary, err := f.svc.Summarize(ctx, store.SaleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Count)
	assert.EqualValues(t, 1, summary.ByStatus[domain.SaleStatusDraft])
	assert.EqualValues(t, 1, summary.ByStatus[domain.SaleStatusCompleted])
	assert.EqualValues(t, 1, summary.ByStatus[domain.SaleStatusCancelled])
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(500)), "cancelled excluded, got %s", summary.TotalRevenue)
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(250)))
	assert.True(t, summary.Outstanding.Equal(decimal.NewFromInt(250)))
}

func TestSaleDateDefaultsToNow(t *testing.T) {
	f := newFixture(t, false)

	before := time.Now().Add(-time.Second)
	sale, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)
	assert.True(t, sale.SaleDate.After(before))
}
