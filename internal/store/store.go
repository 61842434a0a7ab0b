// Package store defines the persistence contracts the services depend
// on. Each aggregate gets a narrow repository; Atomic runs a function
// against a transaction-bound Store so multi-aggregate mutations commit
// or roll back together.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
)

type Store interface {
	Sales() SaleRepository
	Inventory() InventoryRepository
	Receivables() ReceivableRepository
	Refs() RefRepository
	Scans() ScanRepository

	// Atomic runs fn against a Store bound to a single transaction.
	// Row locks taken via the ForUpdate variants hold until fn returns.
	Atomic(ctx context.Context, fn func(Store) error) error
}

// SaleFilter narrows sale listings. Zero values mean "no filter";
// Page/PageSize of 0 disable pagination. SortBy names a sale column
// (sale_date when empty) and SortOrder is asc or desc (desc when
// empty); implementations must reject or ignore unknown columns.
type SaleFilter struct {
	Status        domain.SaleStatus
	CustomerID    string
	UserID        string
	BranchID      string
	PaymentMethod domain.PaymentMethod
	From          *time.Time
	To            *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	Get(ctx context.Context, id string) (*models.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*models.Sale, error)
	GetByInvoice(ctx context.Context, invoiceNumber string) (*models.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]models.Sale, int64, error)
	Update(ctx context.Context, sale *models.Sale) error
	Delete(ctx context.Context, id string) error
	AddPayment(ctx context.Context, payment *models.SalePayment) error
}

// MovementFilter narrows the stock movement audit trail.
type MovementFilter struct {
	ProductID string
	BranchID  string
	Type      domain.MovementType
	Page      int
	PageSize  int
}

type InventoryRepository interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductForUpdate(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error

	GetRow(ctx context.Context, productID, branchID string) (*models.Inventory, error)
	GetRowForUpdate(ctx context.Context, productID, branchID string) (*models.Inventory, error)
	CreateRow(ctx context.Context, row *models.Inventory) error
	UpdateRow(ctx context.Context, row *models.Inventory) error

	// SumQuantity totals a product's stock across all branch rows.
	SumQuantity(ctx context.Context, productID string) (int, error)

	// ListLowStock returns rows at or below their minimum stock level.
	ListLowStock(ctx context.Context) ([]models.Inventory, error)

	AddMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, f MovementFilter) ([]models.StockMovement, int64, error)
}

// ReceivableFilter narrows accounts receivable listings. Overdue
// selects unpaid rows whose due date has passed as of Now.
type ReceivableFilter struct {
	CustomerID string
	Status     domain.ReceivableStatus
	Overdue    bool
	Now        time.Time
	Page       int
	PageSize   int
}

type ReceivableRepository interface {
	Create(ctx context.Context, ar *models.AccountsReceivable) error
	Get(ctx context.Context, id string) (*models.AccountsReceivable, error)
	GetForUpdate(ctx context.Context, id string) (*models.AccountsReceivable, error)
	List(ctx context.Context, f ReceivableFilter) ([]models.AccountsReceivable, int64, error)
	Update(ctx context.Context, ar *models.AccountsReceivable) error
	Delete(ctx context.Context, id string) error
}

// RefRepository resolves references a sale points at. It never mutates.
type RefRepository interface {
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetBranch(ctx context.Context, id string) (*models.Branch, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type ScanRepository interface {
	AddScan(ctx context.Context, scan *models.QRCodeScan) error
}
