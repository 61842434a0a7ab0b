package models

import (
	"time"

	"github.com/shopspring/decimal"

	"zarmind-system/internal/domain"
)

type Sale struct {
	ID            string            `gorm:"type:uuid;primaryKey"`
	InvoiceNumber string            `gorm:"type:varchar(64);uniqueIndex;not null"`
	SaleDate      time.Time         `gorm:"not null"`
	Status        domain.SaleStatus `gorm:"type:varchar(32);not null;index"`
	CustomerID    *string           `gorm:"type:uuid;index"`
	UserID        string            `gorm:"type:uuid;not null;index"`
	BranchID      string            `gorm:"type:uuid;not null;index"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	PaymentMethod domain.PaymentMethod `gorm:"type:varchar(32);not null"`
	Notes         *string              `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

type SaleItem struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	SaleID    string `gorm:"type:uuid;index;not null"`
	ProductID string `gorm:"type:uuid;not null"`
	Quantity  int    `gorm:"not null"`

	Weight           *decimal.Decimal `gorm:"type:decimal(12,3)"`
	UnitPrice        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	GoldPrice        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	StonePrice       decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CraftsmanshipFee decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Discount         decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Subtotal         decimal.Decimal  `gorm:"type:decimal(18,2);not null"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalePayment rows are append-only: they are never updated or deleted, and
// the sum of a sale's payments must reconcile with Sale.PaidAmount.
type SalePayment struct {
	ID              string               `gorm:"type:uuid;primaryKey"`
	SaleID          string               `gorm:"type:uuid;index;not null"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	PaymentMethod   domain.PaymentMethod `gorm:"type:varchar(32);not null"`
	PaymentDate     time.Time            `gorm:"not null"`
	ReferenceNumber *string              `gorm:"type:varchar(64)"`
	Notes           *string              `gorm:"type:text"`
	CreatedAt       time.Time
}
