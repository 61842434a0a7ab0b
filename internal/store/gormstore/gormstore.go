// Package gormstore implements store.Store on gorm/Postgres. Row locks
// use SELECT ... FOR UPDATE; driver errors are translated into the
// domain taxonomy at this boundary so services never see Postgres codes.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/store"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Sales() store.SaleRepository             { return &saleRepo{db: s.db} }
func (s *Store) Inventory() store.InventoryRepository    { return &inventoryRepo{db: s.db} }
func (s *Store) Receivables() store.ReceivableRepository { return &receivableRepo{db: s.db} }
func (s *Store) Refs() store.RefRepository               { return &refRepo{db: s.db} }
func (s *Store) Scans() store.ScanRepository             { return &scanRepo{db: s.db} }

func (s *Store) Atomic(ctx context.Context, fn func(store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate maps storage errors onto the domain taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrConstraint, pgErr.ConstraintName)
		}
	}
	return err
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paginate(db *gorm.DB, page, pageSize int) *gorm.DB {
	if page <= 0 || pageSize <= 0 {
		return db
	}
	return db.Offset((page - 1) * pageSize).Limit(pageSize)
}

// --- sales ---

type saleRepo struct {
	db *gorm.DB
}

func (r *saleRepo) Create(ctx context.Context, sale *models.Sale) error {
	return translate(r.db.WithContext(ctx).Create(sale).Error)
}

func (r *saleRepo) get(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*models.Sale, error) {
	var sale models.Sale
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where(query, args...).
		First(&sale).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

func (r *saleRepo) Get(ctx context.Context, id string) (*models.Sale, error) {
	return r.get(ctx, r.db, "id = ?", id)
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*models.Sale, error) {
	return r.get(ctx, forUpdate(r.db), "id = ?", id)
}

func (r *saleRepo) GetByInvoice(ctx context.Context, invoiceNumber string) (*models.Sale, error) {
	return r.get(ctx, r.db, "invoice_number ILIKE ?", invoiceNumber)
}

func (r *saleRepo) List(ctx context.Context, f store.SaleFilter) ([]models.Sale, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Sale{})
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.CustomerID != "" {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.BranchID != "" {
		db = db.Where("branch_id = ?", f.BranchID)
	}
	if f.PaymentMethod != "" {
		db = db.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.From != nil {
		db = db.Where("sale_date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("sale_date <= ?", *f.To)
	}
	if f.MinAmount != nil {
		db = db.Where("total_amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		db = db.Where("total_amount <= ?", *f.MaxAmount)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var sales []models.Sale
	err := paginate(db, f.Page, f.PageSize).
		Preload("Items").
		Preload("Payments").
		Order(saleOrder(f)).
		Find(&sales).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return sales, total, nil
}

// saleOrder builds the ORDER BY clause from a column whitelist, so the
// filter's sort fields never reach SQL unchecked.
func saleOrder(f store.SaleFilter) string {
	column := "sale_date"
	switch f.SortBy {
	case "total_amount", "paid_amount", "created_at", "invoice_number":
		column = f.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Update rewrites the sale row and syncs its item rows. Draft edits
// replace the whole item set, so old rows are dropped and the current
// set re-inserted. Payments are append-only and never touched here.
func (r *saleRepo) Update(ctx context.Context, sale *models.Sale) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		if len(sale.Items) > 0 {
			if err := tx.Omit("Product").Create(&sale.Items).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Items", "Payments").Save(sale).Error
	})
	return translate(err)
}

func (r *saleRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&models.SalePayment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Sale{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

func (r *saleRepo) AddPayment(ctx context.Context, payment *models.SalePayment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

// --- inventory ---

type inventoryRepo struct {
	db *gorm.DB
}

func (r *inventoryRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *inventoryRepo) GetProductForUpdate(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *inventoryRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Omit("Inventory").Save(product).Error)
}

func (r *inventoryRepo) GetRow(ctx context.Context, productID, branchID string) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *inventoryRepo) GetRowForUpdate(ctx context.Context, productID, branchID string) (*models.Inventory, error) {
	var row models.Inventory
	err := forUpdate(r.db.WithContext(ctx)).
		Where("product_id = ? AND branch_id = ?", productID, branchID).
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *inventoryRepo) CreateRow(ctx context.Context, row *models.Inventory) error {
	return translate(r.db.WithContext(ctx).Create(row).Error)
}

func (r *inventoryRepo) UpdateRow(ctx context.Context, row *models.Inventory) error {
	return translate(r.db.WithContext(ctx).Omit("Product", "Branch").Save(row).Error)
}

func (r *inventoryRepo) SumQuantity(ctx context.Context, productID string) (int, error) {
	var sum *int
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Select("SUM(quantity)").
		Where("product_id = ?", productID).
		Scan(&sum).Error
	if err != nil {
		return 0, translate(err)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *inventoryRepo) ListLowStock(ctx context.Context) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := r.db.WithContext(ctx).
		Where("quantity <= minimum_stock").
		Preload("Product").
		Preload("Branch").
		Order("quantity ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *inventoryRepo) AddMovement(ctx context.Context, movement *models.StockMovement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

func (r *inventoryRepo) ListMovements(ctx context.Context, f store.MovementFilter) ([]models.StockMovement, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.StockMovement{})
	if f.ProductID != "" {
		db = db.Where("product_id = ?", f.ProductID)
	}
	if f.BranchID != "" {
		db = db.Where("branch_id = ?", f.BranchID)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var rows []models.StockMovement
	err := paginate(db, f.Page, f.PageSize).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return rows, total, nil
}

// --- receivables ---

type receivableRepo struct {
	db *gorm.DB
}

func (r *receivableRepo) Create(ctx context.Context, ar *models.AccountsReceivable) error {
	return translate(r.db.WithContext(ctx).Omit("Customer", "Sale").Create(ar).Error)
}

func (r *receivableRepo) Get(ctx context.Context, id string) (*models.AccountsReceivable, error) {
	var ar models.AccountsReceivable
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("id = ?", id).
		First(&ar).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ar, nil
}

func (r *receivableRepo) GetForUpdate(ctx context.Context, id string) (*models.AccountsReceivable, error) {
	var ar models.AccountsReceivable
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&ar).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ar, nil
}

func (r *receivableRepo) List(ctx context.Context, f store.ReceivableFilter) ([]models.AccountsReceivable, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.AccountsReceivable{})
	if f.CustomerID != "" {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Overdue {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		db = db.Where("status <> ? AND due_date IS NOT NULL AND due_date < ?",
			domain.ReceivablePaid, now)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var rows []models.AccountsReceivable
	err := paginate(db, f.Page, f.PageSize).
		Preload("Customer").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return rows, total, nil
}

func (r *receivableRepo) Update(ctx context.Context, ar *models.AccountsReceivable) error {
	return translate(r.db.WithContext(ctx).Omit("Customer", "Sale").Save(ar).Error)
}

func (r *receivableRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AccountsReceivable{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- refs ---

type refRepo struct {
	db *gorm.DB
}

func (r *refRepo) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *refRepo) GetBranch(ctx context.Context, id string) (*models.Branch, error) {
	var b models.Branch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *refRepo) ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// --- scans ---

type scanRepo struct {
	db *gorm.DB
}

func (r *scanRepo) AddScan(ctx context.Context, scan *models.QRCodeScan) error {
	return translate(r.db.WithContext(ctx).Create(scan).Error)
}
