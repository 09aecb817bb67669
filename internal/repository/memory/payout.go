package memory

import (
	"context"
	"fmt"
	"slices"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

type payoutRepository struct {
	c *Container
}

func (r *payoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	logger.EnterMethod("memory.payoutRepository.Create", "payoutID", p.ID, "orderID", p.OrderID)
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.payouts[p.ID]; ok {
		return conflict("payout", p.ID)
	}
	for _, existing := range r.c.payouts {
		if existing.OrderID == p.OrderID {
			return fmt.Errorf("%w: payout for order %s", domain.ErrConflict, p.OrderID)
		}
	}
	stored := *p
	r.c.payouts[p.ID] = &stored
	r.c.payoutIDs = append(r.c.payoutIDs, p.ID)
	return nil
}

func (r *payoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	p, ok := r.c.payouts[id]
	if !ok {
		return nil, domain.NewNotFoundError("payout", id)
	}
	out := *p
	return &out, nil
}

func (r *payoutRepository) Update(ctx context.Context, p *domain.Payout, from domain.PayoutStatus) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	cur, ok := r.c.payouts[p.ID]
	if !ok {
		return domain.NewNotFoundError("payout", p.ID)
	}
	if cur.Status != from {
		return &domain.StaleStatusError{Entity: "payout", ID: p.ID, Expected: string(from)}
	}
	stored := *p
	r.c.payouts[p.ID] = &stored
	return nil
}

// List returns matching payouts, newest first.
func (r *payoutRepository) List(ctx context.Context, f repository.PayoutFilter) ([]domain.Payout, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	var out []domain.Payout
	for i := len(r.c.payoutIDs) - 1; i >= 0; i-- {
		p := r.c.payouts[r.c.payoutIDs[i]]
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.VendorID != "" && p.VendorID != f.VendorID {
			continue
		}
		out = append(out, *p)
	}
	slices.SortStableFunc(out, func(a, b domain.Payout) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
