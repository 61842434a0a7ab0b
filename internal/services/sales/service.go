// Package sales implements the sale document lifecycle: draft creation,
// pricing, payments, completion with inventory commit, cancellation,
// refunds, and the summary read.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/events"
	"zarmind-system/internal/pricing"
	"zarmind-system/internal/services/inventory"
	"zarmind-system/internal/store"
)

type Service struct {
	store     store.Store
	inventory *inventory.Service
	events    events.Publisher

	// refundRestocks returns refunded quantities to branch stock when
	// enabled; by default a refund only moves money.
	refundRestocks bool
}

func New(st store.Store, inv *inventory.Service, pub events.Publisher, refundRestocks bool) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		store:          st,
		inventory:      inv,
		events:         pub,
		refundRestocks: refundRestocks,
	}
}

type ItemInput struct {
	ProductID        string
	Quantity         int
	Weight           *decimal.Decimal
	GoldPrice        decimal.Decimal
	StonePrice       decimal.Decimal
	CraftsmanshipFee decimal.Decimal
	Discount         decimal.Decimal
}

type CreateInput struct {
	InvoiceNumber  *string
	SaleDate       *time.Time
	Status         *domain.SaleStatus
	CustomerID     *string
	UserID         string
	BranchID       string
	Items          []ItemInput
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	PaidAmount     decimal.Decimal
	PaymentMethod  domain.PaymentMethod
	Notes          *string
}

type UpdateInput struct {
	CustomerID     *string
	Items          []ItemInput
	TaxAmount      *decimal.Decimal
	DiscountAmount *decimal.Decimal
	PaymentMethod  *domain.PaymentMethod
	Notes          *string
}

type PaymentInput struct {
	Amount          decimal.Decimal
	PaymentMethod   domain.PaymentMethod
	PaymentDate     *time.Time
	ReferenceNumber *string
	Notes           *string
	ActorID         string
}

type RefundInput struct {
	// Amount defaults to the full unrefunded total when nil.
	Amount  *decimal.Decimal
	Reason  *string
	ActorID string
}

type CompleteInput struct {
	Notes *string
}

type CancelInput struct {
	Reason *string
	Notes  *string
}

// Create prices and persists a new sale. The resulting status is the
// explicit one when given, COMPLETED when the initial payment covers
// the total, DRAFT otherwise. Completion commits inventory in the same
// transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one item", domain.ErrValidation)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", domain.ErrValidation)
		}
	}
	if in.Status != nil && *in.Status != domain.SaleStatusDraft && *in.Status != domain.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: a sale can only be created as DRAFT or COMPLETED", domain.ErrValidation)
	}
	if in.PaidAmount.IsNegative() {
		return nil, fmt.Errorf("%w: paid amount cannot be negative", domain.ErrInvalidAmount)
	}

	var sale *models.Sale
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		if _, err := tx.Refs().GetBranch(ctx, in.BranchID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: branch %s", domain.ErrInvalidReference, in.BranchID)
			}
			return err
		}
		if in.CustomerID != nil {
			if _, err := tx.Refs().GetCustomer(ctx, *in.CustomerID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, *in.CustomerID)
				}
				return err
			}
		}

		if _, err := s.resolveProducts(ctx, tx, in.Items); err != nil {
			return err
		}

		items, totals := buildItems(in.Items)
		total := totals.Total.Add(in.TaxAmount).Sub(in.DiscountAmount)

		if in.PaidAmount.GreaterThan(total) {
			return domain.ErrOverpayment
		}

		status := domain.SaleStatusDraft
		if in.Status != nil {
			status = *in.Status
		} else if in.PaidAmount.GreaterThanOrEqual(total) && total.GreaterThan(decimal.Zero) {
			status = domain.SaleStatusCompleted
		}

		saleDate := time.Now()
		if in.SaleDate != nil {
			saleDate = *in.SaleDate
		}

		sale = &models.Sale{
			ID:             uuid.NewString(),
			InvoiceNumber:  resolveInvoiceNumber(in.InvoiceNumber, saleDate),
			SaleDate:       saleDate,
			Status:         status,
			CustomerID:     in.CustomerID,
			UserID:         in.UserID,
			BranchID:       in.BranchID,
			Subtotal:       totals.Subtotal,
			TaxAmount:      in.TaxAmount,
			DiscountAmount: in.DiscountAmount,
			TotalAmount:    total,
			PaidAmount:     in.PaidAmount,
			RefundedAmount: decimal.Zero,
			PaymentMethod:  in.PaymentMethod,
			Notes:          in.Notes,
		}
		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].SaleID = sale.ID
		}
		sale.Items = items

		if in.PaidAmount.GreaterThan(decimal.Zero) {
			sale.Payments = []models.SalePayment{{
				ID:            uuid.NewString(),
				SaleID:        sale.ID,
				Amount:        in.PaidAmount,
				PaymentMethod: in.PaymentMethod,
				PaymentDate:   saleDate,
			}}
		}

		if err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}

		if status == domain.SaleStatusCompleted {
			if err := s.inventory.DecrementForSale(ctx, tx, sale); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterSaleMutation(ctx, sale, events.TypeSaleCreated)
	if sale.Status == domain.SaleStatusCompleted {
		s.afterStockCommit(ctx, sale)
	}
	return sale, nil
}

// Update edits a draft. Completed, cancelled and refunded sales are
// immutable documents.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Sale, error) {
	var sale *models.Sale
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		sale, err = tx.Sales().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status.Terminal() {
			return fmt.Errorf("%w: sale %s is %s", domain.ErrInvalidState, id, sale.Status)
		}

		if in.CustomerID != nil {
			if _, err := tx.Refs().GetCustomer(ctx, *in.CustomerID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, *in.CustomerID)
				}
				return err
			}
			sale.CustomerID = in.CustomerID
		}
		if in.Items != nil {
			if len(in.Items) == 0 {
				return fmt.Errorf("%w: a sale needs at least one item", domain.ErrValidation)
			}
			if _, err := s.resolveProducts(ctx, tx, in.Items); err != nil {
				return err
			}
			items, totals := buildItems(in.Items)
			for i := range items {
				items[i].ID = uuid.NewString()
				items[i].SaleID = sale.ID
			}
			sale.Items = items
			sale.Subtotal = totals.Subtotal
		}
		if in.TaxAmount != nil {
			sale.TaxAmount = *in.TaxAmount
		}
		if in.DiscountAmount != nil {
			sale.DiscountAmount = *in.DiscountAmount
		}
		if in.PaymentMethod != nil {
			sale.PaymentMethod = *in.PaymentMethod
		}
		if in.Notes != nil {
			sale.Notes = in.Notes
		}

		sale.TotalAmount = sale.Subtotal.Add(sale.TaxAmount).Sub(sale.DiscountAmount)
		if sale.PaidAmount.GreaterThan(sale.TotalAmount) {
			return domain.ErrOverpayment
		}
		return tx.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// RecordPayment appends a payment and advances paidAmount. Crossing the
// total promotes a draft to COMPLETED and commits inventory in the same
// transaction.
func (s *Service) RecordPayment(ctx context.Context, id string, in PaymentInput) (*models.Sale, error) {
	var (
		sale      *models.Sale
		completed bool
	)
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		sale, err = tx.Sales().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status == domain.SaleStatusCancelled || sale.Status == domain.SaleStatusRefunded {
			return fmt.Errorf("%w: cannot record a payment on a %s sale", domain.ErrInvalidState, sale.Status)
		}

		newPaid, err := domain.ApplyPayment(sale.PaidAmount, sale.TotalAmount, in.Amount)
		if err != nil {
			return err
		}

		paymentDate := time.Now()
		if in.PaymentDate != nil {
			paymentDate = *in.PaymentDate
		}
		payment := &models.SalePayment{
			ID:              uuid.NewString(),
			SaleID:          sale.ID,
			Amount:          in.Amount,
			PaymentMethod:   in.PaymentMethod,
			PaymentDate:     paymentDate,
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
		}
		if err := tx.Sales().AddPayment(ctx, payment); err != nil {
			return err
		}

		sale.PaidAmount = newPaid
		if newPaid.GreaterThanOrEqual(sale.TotalAmount) && sale.Status == domain.SaleStatusDraft {
			sale.Status = domain.SaleStatusCompleted
			completed = true
			if err := s.inventory.DecrementForSale(ctx, tx, sale); err != nil {
				return err
			}
		}
		sale.Payments = append(sale.Payments, *payment)
		return tx.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.afterSaleMutation(ctx, sale, events.TypePaymentRecorded)
	if completed {
		s.afterSaleMutation(ctx, sale, events.TypeSaleCompleted)
		s.afterStockCommit(ctx, sale)
	}
	return sale, nil
}

// Complete promotes a draft to COMPLETED and commits inventory. Any
// other status, including a sale that is already COMPLETED, is an
// invalid-state error, so inventory is only ever decremented once.
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (*models.Sale, error) {
	var sale *models.Sale
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		sale, err = tx.Sales().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleStatusDraft {
			return fmt.Errorf("%w: cannot complete a %s sale", domain.ErrInvalidState, sale.Status)
		}

		sale.Status = domain.SaleStatusCompleted
		if in.Notes != nil {
			sale.Notes = mergeNotes(sale.Notes, *in.Notes)
		}
		if err := s.inventory.DecrementForSale(ctx, tx, sale); err != nil {
			return err
		}
		return tx.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.afterSaleMutation(ctx, sale, events.TypeSaleCompleted)
	s.afterStockCommit(ctx, sale)
	return sale, nil
}

// Cancel voids a draft. Completed sales go through Refund instead.
func (s *Service) Cancel(ctx context.Context, id string, in CancelInput) (*models.Sale, error) {
	var sale *models.Sale
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		sale, err = tx.Sales().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleStatusDraft {
			return fmt.Errorf("%w: only a draft can be cancelled, sale is %s", domain.ErrInvalidState, sale.Status)
		}
		sale.Status = domain.SaleStatusCancelled
		if in.Reason != nil {
			sale.Notes = mergeNotes(sale.Notes, "cancelled: "+*in.Reason)
		}
		if in.Notes != nil {
			sale.Notes = mergeNotes(sale.Notes, *in.Notes)
		}
		return tx.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.afterSaleMutation(ctx, sale, events.TypeSaleCancelled)
	return sale, nil
}

// Refund refunds part or all of a completed sale's total. Cumulative
// refunds never exceed the total; reaching it flips the sale to
// REFUNDED, anything less to PARTIALLY_REFUNDED. Restocking is
// controlled by the refund policy flag.
func (s *Service) Refund(ctx context.Context, id string, in RefundInput) (*models.Sale, error) {
	var sale *models.Sale
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		sale, err = tx.Sales().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleStatusCompleted && sale.Status != domain.SaleStatusPartiallyRefunded {
			return fmt.Errorf("%w: cannot refund a %s sale", domain.ErrInvalidState, sale.Status)
		}

		remaining := sale.TotalAmount.Sub(sale.RefundedAmount)
		amount := remaining
		if in.Amount != nil {
			amount = *in.Amount
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: refund must be positive", domain.ErrInvalidAmount)
		}
		if amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: refund exceeds unrefunded total", domain.ErrInvalidAmount)
		}

		firstRefund := sale.Status == domain.SaleStatusCompleted
		sale.RefundedAmount = sale.RefundedAmount.Add(amount)
		if sale.RefundedAmount.GreaterThanOrEqual(sale.TotalAmount) {
			sale.Status = domain.SaleStatusRefunded
		} else {
			sale.Status = domain.SaleStatusPartiallyRefunded
		}
		if in.Reason != nil {
			sale.Notes = mergeNotes(sale.Notes, "refund: "+*in.Reason)
		}

		if s.refundRestocks && firstRefund {
			if err := s.inventory.RestockForRefund(ctx, tx, sale, in.ActorID); err != nil {
				return err
			}
		}
		return tx.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.afterSaleMutation(ctx, sale, events.TypeSaleRefunded)
	return sale, nil
}

// Remove deletes a draft or cancelled sale. Completed and refunded
// sales are permanent records.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.store.Atomic(ctx, func(tx store.Store) error {
		sale, err := tx.Sales().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleStatusDraft && sale.Status != domain.SaleStatusCancelled {
			return fmt.Errorf("%w: cannot delete a %s sale", domain.ErrInvalidState, sale.Status)
		}
		return tx.Sales().Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*models.Sale, error) {
	return s.store.Sales().Get(ctx, id)
}

func (s *Service) GetByInvoice(ctx context.Context, invoiceNumber string) (*models.Sale, error) {
	return s.store.Sales().GetByInvoice(ctx, invoiceNumber)
}

func (s *Service) List(ctx context.Context, f store.SaleFilter) ([]models.Sale, int64, error) {
	return s.store.Sales().List(ctx, f)
}

// Summary aggregates the filtered sales into counts and money buckets.
// Cancelled sales are counted but excluded from revenue.
type Summary struct {
	Count           int64                          `json:"count"`
	TotalRevenue    decimal.Decimal                `json:"totalRevenue"`
	TotalPaid       decimal.Decimal                `json:"totalPaid"`
	TotalRefunded   decimal.Decimal                `json:"totalRefunded"`
	Outstanding     decimal.Decimal                `json:"outstanding"`
	ByStatus        map[domain.SaleStatus]int64    `json:"byStatus"`
	ByPaymentMethod map[domain.PaymentMethod]int64 `json:"byPaymentMethod"`
}

func (s *Service) Summarize(ctx context.Context, f store.SaleFilter) (*Summary, error) {
	f.Page = 0
	f.PageSize = 0
	sales, total, err := s.store.Sales().List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		Count:           total,
		TotalRevenue:    decimal.Zero,
		TotalPaid:       decimal.Zero,
		TotalRefunded:   decimal.Zero,
		Outstanding:     decimal.Zero,
		ByStatus:        make(map[domain.SaleStatus]int64),
		ByPaymentMethod: make(map[domain.PaymentMethod]int64),
	}
	for _, sale := range sales {
		out.ByStatus[sale.Status]++
		out.ByPaymentMethod[sale.PaymentMethod]++
		if sale.Status == domain.SaleStatusCancelled {
			continue
		}
		out.TotalRevenue = out.TotalRevenue.Add(sale.TotalAmount)
		out.TotalPaid = out.TotalPaid.Add(sale.PaidAmount)
		out.TotalRefunded = out.TotalRefunded.Add(sale.RefundedAmount)
		out.Outstanding = out.Outstanding.Add(sale.TotalAmount.Sub(sale.PaidAmount))
	}
	return out, nil
}

func (s *Service) resolveProducts(ctx context.Context, tx store.Store, items []ItemInput) (map[string]models.Product, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := tx.Refs().ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", domain.ErrInvalidReference, item.ProductID)
		}
		if p.Status != domain.ProductStatusInStock {
			return nil, fmt.Errorf("%w: product %s is %s", domain.ErrInvalidReference, p.ID, p.Status)
		}
	}
	return byID, nil
}

func buildItems(inputs []ItemInput) ([]models.SaleItem, pricing.Totals) {
	items := make([]models.SaleItem, 0, len(inputs))
	lines := make([]pricing.ItemInput, 0, len(inputs))
	for _, in := range inputs {
		line := pricing.ItemInput{
			GoldPrice:        in.GoldPrice,
			StonePrice:       in.StonePrice,
			CraftsmanshipFee: in.CraftsmanshipFee,
			Discount:         in.Discount,
			Quantity:         in.Quantity,
		}
		lines = append(lines, line)
		items = append(items, models.SaleItem{
			ProductID:        in.ProductID,
			Quantity:         in.Quantity,
			Weight:           in.Weight,
			UnitPrice:        pricing.UnitPrice(line),
			GoldPrice:        in.GoldPrice,
			StonePrice:       in.StonePrice,
			CraftsmanshipFee: in.CraftsmanshipFee,
			Discount:         in.Discount,
			Subtotal:         pricing.ItemSubtotal(line),
		})
	}
	return items, pricing.SaleTotals(lines, decimal.Zero, decimal.Zero)
}

func resolveInvoiceNumber(explicit *string, saleDate time.Time) string {
	if explicit != nil && *explicit != "" {
		return *explicit
	}
	suffix := strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))
	return fmt.Sprintf("INV-%s-%s", saleDate.Format("20060102"), suffix)
}

func mergeNotes(existing *string, extra string) *string {
	if existing == nil || *existing == "" {
		return &extra
	}
	merged := *existing + "\n" + extra
	return &merged
}

// afterSaleMutation publishes the lifecycle event. Runs after the
// transaction committed; failures only log.
func (s *Service) afterSaleMutation(ctx context.Context, sale *models.Sale, eventType string) {
	s.events.Publish(ctx, events.Event{
		Type: eventType,
		Payload: map[string]interface{}{
			"saleId":        sale.ID,
			"invoiceNumber": sale.InvoiceNumber,
			"status":        sale.Status,
			"totalAmount":   sale.TotalAmount,
			"paidAmount":    sale.PaidAmount,
		},
	})
}

// afterStockCommit publishes the stock decrement event and writes the
// scan audit rows once the completing transaction is durable.
func (s *Service) afterStockCommit(ctx context.Context, sale *models.Sale) {
	s.events.Publish(ctx, events.Event{
		Type: events.TypeStockDecrement,
		Payload: map[string]interface{}{
			"saleId":   sale.ID,
			"branchId": sale.BranchID,
			"items":    len(sale.Items),
		},
	})
	s.recordScans(ctx, sale)
}

// recordScans writes QR scan audit rows for a completed sale's items.
// Best-effort: the sale is already committed, so errors only log.
func (s *Service) recordScans(ctx context.Context, sale *models.Sale) {
	ids := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.store.Refs().ProductsByIDs(ctx, ids)
	if err != nil {
		logrus.WithError(err).WithField("saleId", sale.ID).Warn("failed to load products for scan audit")
		return
	}
	for _, p := range products {
		if p.QRCode == nil || *p.QRCode == "" {
			continue
		}
		scan := &models.QRCodeScan{
			ID:        uuid.NewString(),
			QRCode:    *p.QRCode,
			ProductID: p.ID,
			ScannedBy: sale.UserID,
			ScannedAt: time.Now(),
			Purpose:   domain.ScanPurposeSale,
		}
		if err := s.store.Scans().AddScan(ctx, scan); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"saleId":    sale.ID,
				"productId": p.ID,
			}).Warn("failed to record scan audit row")
		}
	}
}
