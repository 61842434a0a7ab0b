// Package receivables implements the accounts receivable ledger:
// customer debts, payments against them, the derived status, and the
// aggregate summary the dashboard reads.
package receivables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"zarmind-system/internal/database/models"
	"zarmind-system/internal/domain"
	"zarmind-system/internal/store"
)

const (
	summaryCacheKey = "erp:cache:ar_summary"
	summaryCacheTTL = 60 * time.Second
)

type Service struct {
	store store.Store
	rdb   *redis.Client
}

// New builds the ledger. rdb may be nil; the summary cache is then skipped.
func New(st store.Store, rdb *redis.Client) *Service {
	return &Service{store: st, rdb: rdb}
}

type CreateInput struct {
	CustomerID string
	SaleID     *string
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	DueDate    *time.Time
	Notes      *string
}

type UpdateInput struct {
	Amount  *decimal.Decimal
	DueDate *time.Time
	Notes   *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.AccountsReceivable, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: receivable amount must be positive", domain.ErrInvalidAmount)
	}
	if in.PaidAmount.IsNegative() {
		return nil, fmt.Errorf("%w: paid amount cannot be negative", domain.ErrInvalidAmount)
	}
	if in.PaidAmount.GreaterThan(in.Amount) {
		return nil, domain.ErrOverpayment
	}

	var ar *models.AccountsReceivable
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		if _, err := tx.Refs().GetCustomer(ctx, in.CustomerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, in.CustomerID)
			}
			return err
		}
		if in.SaleID != nil {
			if _, err := tx.Sales().Get(ctx, *in.SaleID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: sale %s", domain.ErrInvalidReference, *in.SaleID)
				}
				return err
			}
		}

		ar = &models.AccountsReceivable{
			ID:              uuid.NewString(),
			CustomerID:      in.CustomerID,
			SaleID:          in.SaleID,
			Amount:          in.Amount,
			PaidAmount:      in.PaidAmount,
			RemainingAmount: in.Amount.Sub(in.PaidAmount),
			DueDate:         in.DueDate,
			Status:          domain.DeriveReceivableStatus(in.PaidAmount, in.Amount),
			Notes:           in.Notes,
		}
		return tx.Receivables().Create(ctx, ar)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummaryCache(ctx)
	return ar, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.AccountsReceivable, error) {
	return s.store.Receivables().Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.ReceivableFilter) ([]models.AccountsReceivable, int64, error) {
	return s.store.Receivables().List(ctx, f)
}

// Update edits the editable fields. Shrinking the amount below what was
// already paid is rejected; the status is re-derived afterwards.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.AccountsReceivable, error) {
	var ar *models.AccountsReceivable
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		ar, err = tx.Receivables().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if in.Amount != nil {
			if in.Amount.LessThanOrEqual(decimal.Zero) {
				return fmt.Errorf("%w: receivable amount must be positive", domain.ErrInvalidAmount)
			}
			if ar.PaidAmount.GreaterThan(*in.Amount) {
				return fmt.Errorf("%w: amount is below the paid total", domain.ErrInvalidAmount)
			}
			ar.Amount = *in.Amount
		}
		if in.DueDate != nil {
			ar.DueDate = in.DueDate
		}
		if in.Notes != nil {
			ar.Notes = in.Notes
		}

		ar.RemainingAmount = ar.Amount.Sub(ar.PaidAmount)
		ar.Status = domain.DeriveReceivableStatus(ar.PaidAmount, ar.Amount)
		return tx.Receivables().Update(ctx, ar)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummaryCache(ctx)
	return ar, nil
}

// RecordPayment applies a payment to the receivable and re-derives the
// status. Overpayment is rejected.
func (s *Service) RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (*models.AccountsReceivable, error) {
	var ar *models.AccountsReceivable
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		ar, err = tx.Receivables().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		newPaid, err := domain.ApplyPayment(ar.PaidAmount, ar.Amount, amount)
		if err != nil {
			return err
		}
		ar.PaidAmount = newPaid
		ar.RemainingAmount = ar.Amount.Sub(newPaid)
		ar.Status = domain.DeriveReceivableStatus(newPaid, ar.Amount)
		return tx.Receivables().Update(ctx, ar)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummaryCache(ctx)
	return ar, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	err := s.store.Receivables().Delete(ctx, id)
	if err != nil {
		return err
	}
	s.invalidateSummaryCache(ctx)
	return nil
}

// MarkOverdue stamps unpaid receivables whose due date has passed.
// Intended to run from a periodic sweep.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	marked := 0
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		rows, _, err := tx.Receivables().List(ctx, store.ReceivableFilter{Overdue: true, Now: now})
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].Status == domain.ReceivableOverdue {
				continue
			}
			rows[i].Status = domain.ReceivableOverdue
			if err := tx.Receivables().Update(ctx, &rows[i]); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		s.invalidateSummaryCache(ctx)
	}
	return marked, nil
}

// Summary is the aggregate the financial dashboard reads.
type Summary struct {
	Count            int64                             `json:"count"`
	TotalAmount      decimal.Decimal                   `json:"totalAmount"`
	TotalPaid        decimal.Decimal                   `json:"totalPaid"`
	TotalOutstanding decimal.Decimal                   `json:"totalOutstanding"`
	ByStatus         map[domain.ReceivableStatus]int64 `json:"byStatus"`
	OverdueCount     int64                             `json:"overdueCount"`
	OverdueAmount    decimal.Decimal                   `json:"overdueAmount"`
}

func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, summaryCacheKey).Bytes(); err == nil {
			var out Summary
			if json.Unmarshal(cached, &out) == nil {
				return &out, nil
			}
		}
	}

	rows, total, err := s.store.Receivables().List(ctx, store.ReceivableFilter{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := &Summary{
		Count:            total,
		TotalAmount:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		OverdueAmount:    decimal.Zero,
		ByStatus:         make(map[domain.ReceivableStatus]int64),
	}
	for _, ar := range rows {
		out.ByStatus[ar.Status]++
		out.TotalAmount = out.TotalAmount.Add(ar.Amount)
		out.TotalPaid = out.TotalPaid.Add(ar.PaidAmount)
		out.TotalOutstanding = out.TotalOutstanding.Add(ar.RemainingAmount)
		if ar.Status != domain.ReceivablePaid && ar.DueDate != nil && ar.DueDate.Before(now) {
			out.OverdueCount++
			out.OverdueAmount = out.OverdueAmount.Add(ar.RemainingAmount)
		}
	}

	if s.rdb != nil {
		if body, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, summaryCacheKey, body, summaryCacheTTL).Err(); err != nil {
				logrus.WithError(err).Warn("failed to cache receivables summary")
			}
		}
	}
	return out, nil
}

func (s *Service) invalidateSummaryCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, summaryCacheKey).Err(); err != nil {
		logrus.WithError(err).Warn("failed to invalidate receivables summary cache")
	}
}
