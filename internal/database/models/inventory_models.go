package models

import (
	"time"

	"github.com/shopspring/decimal"

	"zarmind-system/internal/domain"
)

type Product struct {
	ID       string                 `gorm:"type:uuid;primaryKey"`
	SKU      string                 `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name     string                 `gorm:"type:varchar(255);not null"`
	QRCode   *string                `gorm:"type:varchar(128);index"`
	Category domain.ProductCategory `gorm:"type:varchar(32);not null;index"`
	Status   domain.ProductStatus   `gorm:"type:varchar(32);not null;index"`

	Weight        *decimal.Decimal `gorm:"type:decimal(12,3)"`
	PurchasePrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
	SellingPrice  decimal.Decimal  `gorm:"type:decimal(18,2);not null"`

	// Quantity is derived: the sum of this product's branch inventory rows.
	// It is recomputed after every ledger mutation, never adjusted directly.
	Quantity int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Inventory []Inventory `gorm:"foreignKey:ProductID"`
}

type Branch struct {
	ID       string  `gorm:"type:uuid;primaryKey"`
	Code     string  `gorm:"type:varchar(32);uniqueIndex;not null"`
	Name     string  `gorm:"type:varchar(255);not null"`
	Address  *string `gorm:"type:text"`
	IsActive bool    `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Inventory is the per-branch stock row and the source of truth for
// quantities. At most one row exists per (product, branch) pair.
type Inventory struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ProductID string `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_branch"`
	BranchID  string `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_branch"`

	Quantity     int     `gorm:"not null;default:0"`
	MinimumStock int     `gorm:"not null;default:0"`
	Location     *string `gorm:"type:varchar(128)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Branch  *Branch  `gorm:"foreignKey:BranchID"`
}

// StockMovement is the append-only audit trail of every quantity change.
type StockMovement struct {
	ID        string              `gorm:"type:uuid;primaryKey"`
	ProductID string              `gorm:"type:uuid;not null;index"`
	BranchID  *string             `gorm:"type:uuid;index"`
	Type      domain.MovementType `gorm:"type:varchar(32);not null;index"`

	// Quantity is signed: negative for outbound movements.
	Quantity    int     `gorm:"not null"`
	ReferenceID *string `gorm:"type:uuid;index"`
	Notes       *string `gorm:"type:text"`
	CreatedBy   string  `gorm:"type:uuid;not null"`

	CreatedAt time.Time
}

// QRCodeScan is a best-effort audit row written after a sale commits.
type QRCodeScan struct {
	ID        string             `gorm:"type:uuid;primaryKey"`
	QRCode    string             `gorm:"type:varchar(128);not null;index"`
	ProductID string             `gorm:"type:uuid;not null;index"`
	ScannedBy string             `gorm:"type:uuid;not null"`
	ScannedAt time.Time          `gorm:"not null"`
	Purpose   domain.ScanPurpose `gorm:"type:varchar(32);not null"`
	Location  *string            `gorm:"type:varchar(128)"`
}
