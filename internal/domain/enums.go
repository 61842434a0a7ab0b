package domain

// SaleStatus is the lifecycle state of a sale document.
// DRAFT is the only editable state; COMPLETED commits inventory and can
// only move on through refunds.
type SaleStatus string

const (
	SaleStatusDraft             SaleStatus = "DRAFT"
	SaleStatusCompleted         SaleStatus = "COMPLETED"
	SaleStatusCancelled         SaleStatus = "CANCELLED"
	SaleStatusRefunded          SaleStatus = "REFUNDED"
	SaleStatusPartiallyRefunded SaleStatus = "PARTIALLY_REFUNDED"
)

// Valid reports whether s is a known sale status.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusCompleted, SaleStatusCancelled,
		SaleStatusRefunded, SaleStatusPartiallyRefunded:
		return true
	}
	return false
}

// Terminal reports whether a sale in this status can no longer be edited.
func (s SaleStatus) Terminal() bool {
	return s != SaleStatusDraft
}

type ProductStatus string

const (
	ProductStatusInStock    ProductStatus = "IN_STOCK"
	ProductStatusSold       ProductStatus = "SOLD"
	ProductStatusReserved   ProductStatus = "RESERVED"
	ProductStatusInWorkshop ProductStatus = "IN_WORKSHOP"
	ProductStatusReturned   ProductStatus = "RETURNED"
	ProductStatusDamaged    ProductStatus = "DAMAGED"
)

type ProductCategory string

const (
	CategoryRawGold      ProductCategory = "RAW_GOLD"
	CategoryManufactured ProductCategory = "MANUFACTURED_PRODUCT"
	CategoryStone        ProductCategory = "STONE"
	CategoryCoin         ProductCategory = "COIN"
	CategoryCurrency     ProductCategory = "CURRENCY"
	CategoryGeneralGoods ProductCategory = "GENERAL_GOODS"
)

// ParseCategory maps the URL path segment used by the inventory surface
// (e.g. "coins", "general-goods") onto a product category.
func ParseCategory(segment string) (ProductCategory, bool) {
	switch segment {
	case "coins", "coin":
		return CategoryCoin, true
	case "currency":
		return CategoryCurrency, true
	case "stones", "stone":
		return CategoryStone, true
	case "products", "manufactured":
		return CategoryManufactured, true
	case "general-goods":
		return CategoryGeneralGoods, true
	case "raw-gold":
		return CategoryRawGold, true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCheck        PaymentMethod = "CHECK"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCard         PaymentMethod = "CARD"
	PaymentInstallment  PaymentMethod = "INSTALLMENT"
	PaymentTradeIn      PaymentMethod = "TRADE_IN"
	PaymentMixed        PaymentMethod = "MIXED"
)

// ReceivableStatus is derived from amount/paidAmount except for OVERDUE,
// which is stamped by an external due-date sweep.
type ReceivableStatus string

const (
	ReceivablePending ReceivableStatus = "PENDING"
	ReceivablePartial ReceivableStatus = "PARTIAL"
	ReceivablePaid    ReceivableStatus = "PAID"
	ReceivableOverdue ReceivableStatus = "OVERDUE"
)

type MovementType string

const (
	MovementSale       MovementType = "SALE"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementRestock    MovementType = "RESTOCK"
)

// ScanPurpose tags a QR scan audit row with the operation that produced it.
type ScanPurpose string

const (
	ScanPurposeSale ScanPurpose = "SALE"
)
