// Package inventory implements the stock ledger: per-branch quantity
// rows, the derived product quantity, the movement audit trail, and the
// sale-driven decrement/restock hooks the sale lifecycle calls into.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/events"
	"zarmind-system/internal/store"
)

const (
	lowStockCacheKey = "erp:cache:low_stock"
	lowStockCacheTTL = 60 * time.Second

	// Minimum stock applied when an adjustment creates a branch row.
	defaultMinimumStock = 10
)

type Service struct {
	store  store.Store
	rdb    *redis.Client
	events events.Publisher
}

// New builds the ledger. rdb may be nil; caching is then skipped.
func New(st store.Store, rdb *redis.Client, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{store: st, rdb: rdb, events: pub}
}

type AdjustInput struct {
	Category   domain.ProductCategory
	ProductID  string
	BranchID   string
	Adjustment int
	Notes      *string
	ActorID    string
}

// AdjustQuantity applies a signed manual adjustment to one branch row.
// The product-level total and the branch row must both stay >= 0; a
// missing branch row is created when the adjustment is positive.
func (s *Service) AdjustQuantity(ctx context.Context, in AdjustInput) (*models.Product, error) {
	if in.Adjustment == 0 {
		return nil, fmt.Errorf("%w: adjustment must be non-zero", domain.ErrValidation)
	}

	var product *models.Product
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		p, err := tx.Inventory().GetProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("product %s: %w", in.ProductID, err)
		}
		if in.Category != "" && p.Category != in.Category {
			return fmt.Errorf("%w: product %s is not in category %s",
				domain.ErrInvalidReference, in.ProductID, in.Category)
		}

		total, err := tx.Inventory().SumQuantity(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if total+in.Adjustment < 0 {
			return domain.ErrNegativeStock
		}

		row, err := tx.Inventory().GetRowForUpdate(ctx, in.ProductID, in.BranchID)
		switch {
		case err == nil:
			if row.Quantity+in.Adjustment < 0 {
				return domain.ErrNegativeStock
			}
			row.Quantity += in.Adjustment
			if err := tx.Inventory().UpdateRow(ctx, row); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrNotFound):
			if in.Adjustment < 0 {
				return domain.ErrNegativeStock
			}
			if _, err := tx.Refs().GetBranch(ctx, in.BranchID); err != nil {
				return fmt.Errorf("branch %s: %w", in.BranchID, err)
			}
			row = &models.Inventory{
				ID:           uuid.NewString(),
				ProductID:    in.ProductID,
				BranchID:     in.BranchID,
				Quantity:     in.Adjustment,
				MinimumStock: defaultMinimumStock,
			}
			if err := tx.Inventory().CreateRow(ctx, row); err != nil {
				return err
			}
		default:
			return err
		}

		branchID := in.BranchID
		movement := &models.StockMovement{
			ID:        uuid.NewString(),
			ProductID: in.ProductID,
			BranchID:  &branchID,
			Type:      domain.MovementAdjustment,
			Quantity:  in.Adjustment,
			Notes:     in.Notes,
			CreatedBy: in.ActorID,
		}
		if err := tx.Inventory().AddMovement(ctx, movement); err != nil {
			return err
		}

		product, err = s.recomputeProduct(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLowStockCache(ctx)
	s.events.Publish(ctx, events.Event{
		Type: events.TypeStockAdjusted,
		Payload: map[string]interface{}{
			"productId":  in.ProductID,
			"branchId":   in.BranchID,
			"adjustment": in.Adjustment,
			"quantity":   product.Quantity,
		},
	})
	return product, nil
}

// DecrementForSale commits a completed sale's quantities against the
// sale's branch. It runs on the caller's transaction-bound store so the
// decrement and the status change land in one commit. Items whose
// branch row does not exist are skipped; existing rows clamp at zero.
func (s *Service) DecrementForSale(ctx context.Context, tx store.Store, sale *models.Sale) error {
	for _, item := range sale.Items {
		row, err := tx.Inventory().GetRowForUpdate(ctx, item.ProductID, sale.BranchID)
		if errors.Is(err, domain.ErrNotFound) {
			logrus.WithFields(logrus.Fields{
				"saleId":    sale.ID,
				"productId": item.ProductID,
				"branchId":  sale.BranchID,
			}).Warn("no inventory row for sold item, skipping decrement")
			continue
		}
		if err != nil {
			return err
		}

		decremented := item.Quantity
		if decremented > row.Quantity {
			decremented = row.Quantity
		}
		if decremented == 0 {
			continue
		}
		row.Quantity -= decremented
		if err := tx.Inventory().UpdateRow(ctx, row); err != nil {
			return err
		}

		branchID := sale.BranchID
		saleID := sale.ID
		movement := &models.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   item.ProductID,
			BranchID:    &branchID,
			Type:        domain.MovementSale,
			Quantity:    -decremented,
			ReferenceID: &saleID,
			CreatedBy:   sale.UserID,
		}
		if err := tx.Inventory().AddMovement(ctx, movement); err != nil {
			return err
		}

		p, err := tx.Inventory().GetProductForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if _, err := s.recomputeProduct(ctx, tx, p); err != nil {
			return err
		}
	}
	return nil
}

// RestockForRefund returns a refunded sale's quantities to the sale's
// branch, creating rows that no longer exist.
func (s *Service) RestockForRefund(ctx context.Context, tx store.Store, sale *models.Sale, actorID string) error {
	for _, item := range sale.Items {
		row, err := tx.Inventory().GetRowForUpdate(ctx, item.ProductID, sale.BranchID)
		switch {
		case err == nil:
			row.Quantity += item.Quantity
			if err := tx.Inventory().UpdateRow(ctx, row); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrNotFound):
			row = &models.Inventory{
				ID:           uuid.NewString(),
				ProductID:    item.ProductID,
				BranchID:     sale.BranchID,
				Quantity:     item.Quantity,
				MinimumStock: defaultMinimumStock,
			}
			if err := tx.Inventory().CreateRow(ctx, row); err != nil {
				return err
			}
		default:
			return err
		}

		branchID := sale.BranchID
		saleID := sale.ID
		movement := &models.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   item.ProductID,
			BranchID:    &branchID,
			Type:        domain.MovementRestock,
			Quantity:    item.Quantity,
			ReferenceID: &saleID,
			CreatedBy:   actorID,
		}
		if err := tx.Inventory().AddMovement(ctx, movement); err != nil {
			return err
		}

		p, err := tx.Inventory().GetProductForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if _, err := s.recomputeProduct(ctx, tx, p); err != nil {
			return err
		}
	}
	return nil
}

// recomputeProduct rewrites the derived total and flips the product
// between IN_STOCK and SOLD at the zero boundary. Other statuses
// (RESERVED, IN_WORKSHOP, ...) are left alone.
func (s *Service) recomputeProduct(ctx context.Context, tx store.Store, p *models.Product) (*models.Product, error) {
	total, err := tx.Inventory().SumQuantity(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Quantity = total
	switch {
	case total == 0 && p.Status == domain.ProductStatusInStock:
		p.Status = domain.ProductStatusSold
	case total > 0 && p.Status == domain.ProductStatusSold:
		p.Status = domain.ProductStatusInStock
	}
	if err := tx.Inventory().UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// LowStock lists branch rows at or below their minimum, with a short
// redis cache in front of the query.
func (s *Service) LowStock(ctx context.Context) ([]models.Inventory, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, lowStockCacheKey).Bytes(); err == nil {
			var rows []models.Inventory
			if json.Unmarshal(cached, &rows) == nil {
				return rows, nil
			}
		}
	}

	rows, err := s.store.Inventory().ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if body, err := json.Marshal(rows); err == nil {
			if err := s.rdb.Set(ctx, lowStockCacheKey, body, lowStockCacheTTL).Err(); err != nil {
				logrus.WithError(err).Warn("failed to cache low stock rows")
			}
		}
	}
	return rows, nil
}

func (s *Service) Movements(ctx context.Context, f store.MovementFilter) ([]models.StockMovement, int64, error) {
	return s.store.Inventory().ListMovements(ctx, f)
}

func (s *Service) invalidateLowStockCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, lowStockCacheKey).Err(); err != nil {
		logrus.WithError(err).Warn("failed to invalidate low stock cache")
	}
}
