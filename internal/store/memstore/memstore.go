// Package memstore is an in-memory store.Store used by the test suite
// and local development. A single mutex serializes all access; Atomic
// holds it for the whole function, which gives the same isolation the
// database transaction provides without simulating rollback.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/store"
)

type data struct {
	sales       map[string]models.Sale
	products    map[string]models.Product
	branches    map[string]models.Branch
	customers   map[string]models.Customer
	inventory   map[string]models.Inventory // keyed productID + "|" + branchID
	movements   []models.StockMovement
	scans       []models.QRCodeScan
	receivables map[string]models.AccountsReceivable
}

type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool
}

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		d: &data{
			sales:       make(map[string]models.Sale),
			products:    make(map[string]models.Product),
			branches:    make(map[string]models.Branch),
			customers:   make(map[string]models.Customer),
			inventory:   make(map[string]models.Inventory),
			receivables: make(map[string]models.AccountsReceivable),
		},
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Sales() store.SaleRepository             { return (*saleRepo)(s) }
func (s *Store) Inventory() store.InventoryRepository    { return (*inventoryRepo)(s) }
func (s *Store) Receivables() store.ReceivableRepository { return (*receivableRepo)(s) }
func (s *Store) Refs() store.RefRepository               { return (*refRepo)(s) }
func (s *Store) Scans() store.ScanRepository             { return (*scanRepo)(s) }

func (s *Store) Atomic(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Store{mu: s.mu, d: s.d, inTx: true})
}

// Seed helpers for tests.

func (s *Store) SeedBranch(b models.Branch) {
	defer s.lock()()
	s.d.branches[b.ID] = b
}

func (s *Store) SeedCustomer(c models.Customer) {
	defer s.lock()()
	s.d.customers[c.ID] = c
}

func (s *Store) SeedProduct(p models.Product) {
	defer s.lock()()
	s.d.products[p.ID] = cloneProduct(p)
}

func (s *Store) SeedInventory(row models.Inventory) {
	defer s.lock()()
	s.d.inventory[invKey(row.ProductID, row.BranchID)] = row
}

func invKey(productID, branchID string) string {
	return productID + "|" + branchID
}

func paginate[T any](rows []T, page, pageSize int) []T {
	if page <= 0 || pageSize <= 0 {
		return rows
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func cloneSale(src models.Sale) models.Sale {
	out := src
	out.Items = append([]models.SaleItem(nil), src.Items...)
	out.Payments = append([]models.SalePayment(nil), src.Payments...)
	return out
}

func cloneProduct(src models.Product) models.Product {
	out := src
	out.Inventory = append([]models.Inventory(nil), src.Inventory...)
	return out
}

// --- sales ---

type saleRepo Store

func (r *saleRepo) Create(_ context.Context, sale *models.Sale) error {
	defer (*Store)(r).lock()()
	for _, existing := range r.d.sales {
		if strings.EqualFold(existing.InvoiceNumber, sale.InvoiceNumber) {
			return domain.ErrConstraint
		}
	}
	now := time.Now()
	sale.CreatedAt = now
	sale.UpdatedAt = now
	r.d.sales[sale.ID] = cloneSale(*sale)
	return nil
}

func (r *saleRepo) Get(_ context.Context, id string) (*models.Sale, error) {
	defer (*Store)(r).lock()()
	sale, ok := r.d.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneSale(sale)
	return &out, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*models.Sale, error) {
	return r.Get(ctx, id)
}

func (r *saleRepo) GetByInvoice(_ context.Context, invoiceNumber string) (*models.Sale, error) {
	defer (*Store)(r).lock()()
	for _, sale := range r.d.sales {
		if strings.EqualFold(sale.InvoiceNumber, invoiceNumber) {
			out := cloneSale(sale)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *saleRepo) List(_ context.Context, f store.SaleFilter) ([]models.Sale, int64, error) {
	defer (*Store)(r).lock()()
	var out []models.Sale
	for _, sale := range r.d.sales {
		if f.Status != "" && sale.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && (sale.CustomerID == nil || *sale.CustomerID != f.CustomerID) {
			continue
		}
		if f.UserID != "" && sale.UserID != f.UserID {
			continue
		}
		if f.BranchID != "" && sale.BranchID != f.BranchID {
			continue
		}
		if f.PaymentMethod != "" && sale.PaymentMethod != f.PaymentMethod {
			continue
		}
		if f.From != nil && sale.SaleDate.Before(*f.From) {
			continue
		}
		if f.To != nil && sale.SaleDate.After(*f.To) {
			continue
		}
		if f.MinAmount != nil && sale.TotalAmount.LessThan(*f.MinAmount) {
			continue
		}
		if f.MaxAmount != nil && sale.TotalAmount.GreaterThan(*f.MaxAmount) {
			continue
		}
		out = append(out, cloneSale(sale))
	}
	asc := strings.EqualFold(f.SortOrder, "asc")
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "total_amount":
			less = out[i].TotalAmount.LessThan(out[j].TotalAmount)
		case "paid_amount":
			less = out[i].PaidAmount.LessThan(out[j].PaidAmount)
		case "created_at":
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		case "invoice_number":
			less = out[i].InvoiceNumber < out[j].InvoiceNumber
		default:
			less = out[i].SaleDate.Before(out[j].SaleDate)
		}
		if asc {
			return less
		}
		return !less
	})
	total := int64(len(out))
	return paginate(out, f.Page, f.PageSize), total, nil
}

func (r *saleRepo) Update(_ context.Context, sale *models.Sale) error {
	defer (*Store)(r).lock()()
	if _, ok := r.d.sales[sale.ID]; !ok {
		return domain.ErrNotFound
	}
	sale.UpdatedAt = time.Now()
	r.d.sales[sale.ID] = cloneSale(*sale)
	return nil
}

func (r *saleRepo) Delete(_ context.Context, id string) error {
	defer (*Store)(r).lock()()
	if _, ok := r.d.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.sales, id)
	return nil
}

func (r *saleRepo) AddPayment(_ context.Context, payment *models.SalePayment) error {
	defer (*Store)(r).lock()()
	sale, ok := r.d.sales[payment.SaleID]
	if !ok {
		return domain.ErrNotFound
	}
	payment.CreatedAt = time.Now()
	sale.Payments = append(sale.Payments, *payment)
	r.d.sales[payment.SaleID] = sale
	return nil
}

// --- inventory ---

type inventoryRepo Store

func (r *inventoryRepo) GetProduct(_ context.Context, id string) (*models.Product, error) {
	defer (*Store)(r).lock()()
	p, ok := r.d.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (r *inventoryRepo) GetProductForUpdate(ctx context.Context, id string) (*models.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r *inventoryRepo) UpdateProduct(_ context.Context, product *models.Product) error {
	defer (*Store)(r).lock()()
	if _, ok := r.d.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.d.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *inventoryRepo) GetRow(_ context.Context, productID, branchID string) (*models.Inventory, error) {
	defer (*Store)(r).lock()()
	row, ok := r.d.inventory[invKey(productID, branchID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := row
	return &out, nil
}

func (r *inventoryRepo) GetRowForUpdate(ctx context.Context, productID, branchID string) (*models.Inventory, error) {
	return r.GetRow(ctx, productID, branchID)
}

func (r *inventoryRepo) CreateRow(_ context.Context, row *models.Inventory) error {
	defer (*Store)(r).lock()()
	key := invKey(row.ProductID, row.BranchID)
	if _, ok := r.d.inventory[key]; ok {
		return domain.ErrConstraint
	}
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now
	r.d.inventory[key] = *row
	return nil
}

func (r *inventoryRepo) UpdateRow(_ context.Context, row *models.Inventory) error {
	defer (*Store)(r).lock()()
	key := invKey(row.ProductID, row.BranchID)
	if _, ok := r.d.inventory[key]; !ok {
		return domain.ErrNotFound
	}
	row.UpdatedAt = time.Now()
	r.d.inventory[key] = *row
	return nil
}

func (r *inventoryRepo) SumQuantity(_ context.Context, productID string) (int, error) {
	defer (*Store)(r).lock()()
	sum := 0
	for _, row := range r.d.inventory {
		if row.ProductID == productID {
			sum += row.Quantity
		}
	}
	return sum, nil
}

func (r *inventoryRepo) ListLowStock(_ context.Context) ([]models.Inventory, error) {
	defer (*Store)(r).lock()()
	var out []models.Inventory
	for _, row := range r.d.inventory {
		if row.Quantity > row.MinimumStock {
			continue
		}
		if p, ok := r.d.products[row.ProductID]; ok {
			pc := cloneProduct(p)
			row.Product = &pc
		}
		if b, ok := r.d.branches[row.BranchID]; ok {
			bc := b
			row.Branch = &bc
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Quantity < out[j].Quantity
	})
	return out, nil
}

func (r *inventoryRepo) AddMovement(_ context.Context, movement *models.StockMovement) error {
	defer (*Store)(r).lock()()
	movement.CreatedAt = time.Now()
	r.d.movements = append(r.d.movements, *movement)
	return nil
}

func (r *inventoryRepo) ListMovements(_ context.Context, f store.MovementFilter) ([]models.StockMovement, int64, error) {
	defer (*Store)(r).lock()()
	var out []models.StockMovement
	for _, m := range r.d.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.BranchID != "" && (m.BranchID == nil || *m.BranchID != f.BranchID) {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := int64(len(out))
	return paginate(out, f.Page, f.PageSize), total, nil
}

// --- receivables ---

type receivableRepo Store

func (r *receivableRepo) Create(_ context.Context, ar *models.AccountsReceivable) error {
	defer (*Store)(r).lock()()
	now := time.Now()
	ar.CreatedAt = now
	ar.UpdatedAt = now
	stored := *ar
	stored.Customer = nil
	stored.Sale = nil
	r.d.receivables[ar.ID] = stored
	return nil
}

func (r *receivableRepo) Get(_ context.Context, id string) (*models.AccountsReceivable, error) {
	defer (*Store)(r).lock()()
	ar, ok := r.d.receivables[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c, ok := r.d.customers[ar.CustomerID]; ok {
		cc := c
		ar.Customer = &cc
	}
	out := ar
	return &out, nil
}

func (r *receivableRepo) GetForUpdate(ctx context.Context, id string) (*models.AccountsReceivable, error) {
	return r.Get(ctx, id)
}

func (r *receivableRepo) List(_ context.Context, f store.ReceivableFilter) ([]models.AccountsReceivable, int64, error) {
	defer (*Store)(r).lock()()
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	var out []models.AccountsReceivable
	for _, ar := range r.d.receivables {
		if f.CustomerID != "" && ar.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && ar.Status != f.Status {
			continue
		}
		if f.Overdue {
			if ar.Status == domain.ReceivablePaid || ar.DueDate == nil || !ar.DueDate.Before(now) {
				continue
			}
		}
		if c, ok := r.d.customers[ar.CustomerID]; ok {
			cc := c
			ar.Customer = &cc
		}
		out = append(out, ar)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := int64(len(out))
	return paginate(out, f.Page, f.PageSize), total, nil
}

func (r *receivableRepo) Update(_ context.Context, ar *models.AccountsReceivable) error {
	defer (*Store)(r).lock()()
	if _, ok := r.d.receivables[ar.ID]; !ok {
		return domain.ErrNotFound
	}
	ar.UpdatedAt = time.Now()
	stored := *ar
	stored.Customer = nil
	stored.Sale = nil
	r.d.receivables[ar.ID] = stored
	return nil
}

func (r *receivableRepo) Delete(_ context.Context, id string) error {
	defer (*Store)(r).lock()()
	if _, ok := r.d.receivables[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.receivables, id)
	return nil
}

// --- refs ---

type refRepo Store

func (r *refRepo) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	defer (*Store)(r).lock()()
	c, ok := r.d.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *refRepo) GetBranch(_ context.Context, id string) (*models.Branch, error) {
	defer (*Store)(r).lock()()
	b, ok := r.d.branches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := b
	return &out, nil
}

func (r *refRepo) ProductsByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	defer (*Store)(r).lock()()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.d.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// --- scans ---

type scanRepo Store

func (r *scanRepo) AddScan(_ context.Context, scan *models.QRCodeScan) error {
	defer (*Store)(r).lock()()
	r.d.scans = append(r.d.scans, *scan)
	return nil
}

// RecordedScans returns a copy of the recorded scan rows, for tests.
func (s *Store) RecordedScans() []models.QRCodeScan {
	defer s.lock()()
	return append([]models.QRCodeScan(nil), s.d.scans...)
}
