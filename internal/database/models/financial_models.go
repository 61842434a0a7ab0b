package models

import (
	"time"

	"github.com/shopspring/decimal"

	"zarmind-system/internal/domain"
)

type Customer struct {
	ID       string  `gorm:"type:uuid;primaryKey"`
	Name     string  `gorm:"type:varchar(255);not null"`
	Phone    *string `gorm:"type:varchar(32);index"`
	Email    *string `gorm:"type:varchar(128)"`
	Address  *string `gorm:"type:text"`
	IsActive bool    `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountsReceivable tracks money owed by a customer, optionally linked to
// the sale that originated the debt. RemainingAmount is always
// Amount - PaidAmount and is rewritten with the row on every payment.
type AccountsReceivable struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	CustomerID string  `gorm:"type:uuid;not null;index"`
	SaleID     *string `gorm:"type:uuid;index"`

	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	DueDate *time.Time              `gorm:"index"`
	Status  domain.ReceivableStatus `gorm:"type:varchar(32);not null;index"`
	Notes   *string                 `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
	Sale     *Sale     `gorm:"foreignKey:SaleID"`
}
