package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

// Container is the session-scoped state holder for every collection.
// Every read returns copies; callers mutate only through the repositories.
type Container struct {
	mu sync.RWMutex

	orders        map[string]*domain.Order
	orderIDs      []string
	trials        map[string]*domain.TrialBooking
	trialIDs      []string
	sanitizations []domain.SanitizationRecord
	disputes      map[string]*domain.Dispute
	disputeIDs    []string
	notifications map[string]*domain.Notification
	noteIDs       []string
	payouts       map[string]*domain.Payout
	payoutIDs     []string
}

func New() *Container {
	return &Container{
		orders:        make(map[string]*domain.Order),
		trials:        make(map[string]*domain.TrialBooking),
		disputes:      make(map[string]*domain.Dispute),
		notifications: make(map[string]*domain.Notification),
		payouts:       make(map[string]*domain.Payout),
	}
}

// Store exposes the container through the repository interfaces.
func (c *Container) Store() repository.Store {
	return repository.Store{
		Orders:        &orderRepository{c: c},
		Trials:        &trialRepository{c: c},
		Sanitizations: &sanitizationRepository{c: c},
		Disputes:      &disputeRepository{c: c},
		Notifications: &notificationRepository{c: c},
		Payouts:       &payoutRepository{c: c},
	}
}

func conflict(entity, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrConflict, entity, id)
}

type orderRepository struct {
	c *Container
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	logger.EnterMethod("memory.orderRepository.Create", "orderID", o.ID)
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.orders[o.ID]; ok {
		return conflict("order", o.ID)
	}
	stored := o.Clone()
	r.c.orders[o.ID] = &stored
	r.c.orderIDs = append(r.c.orderIDs, o.ID)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	o, ok := r.c.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id)
	}
	out := o.Clone()
	return &out, nil
}

func (r *orderRepository) Update(ctx context.Context, o *domain.Order, from domain.OrderStatus) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	cur, ok := r.c.orders[o.ID]
	if !ok {
		return domain.NewNotFoundError("order", o.ID)
	}
	if cur.Status != from {
		return &domain.StaleStatusError{Entity: "order", ID: o.ID, Expected: string(from)}
	}
	stored := o.Clone()
	r.c.orders[o.ID] = &stored
	return nil
}

func (r *orderRepository) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	var out []domain.Order
	for i := len(r.c.orderIDs) - 1; i >= 0; i-- {
		o := r.c.orders[r.c.orderIDs[i]]
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.VendorID != "" && o.VendorID != f.VendorID {
			continue
		}
		if f.CenterID != "" && o.CenterID != f.CenterID {
			continue
		}
		out = append(out, o.Clone())
	}
	slices.SortStableFunc(out, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

type trialRepository struct {
	c *Container
}

func (r *trialRepository) Create(ctx context.Context, b *domain.TrialBooking) error {
	logger.EnterMethod("memory.trialRepository.Create", "trialID", b.ID)
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.trials[b.ID]; ok {
		return conflict("trial", b.ID)
	}
	stored := *b
	r.c.trials[b.ID] = &stored
	r.c.trialIDs = append(r.c.trialIDs, b.ID)
	return nil
}

func (r *trialRepository) GetByID(ctx context.Context, id string) (*domain.TrialBooking, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	b, ok := r.c.trials[id]
	if !ok {
		return nil, domain.NewNotFoundError("trial", id)
	}
	out := *b
	return &out, nil
}

func (r *trialRepository) Update(ctx context.Context, b *domain.TrialBooking, from domain.TrialStatus) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	cur, ok := r.c.trials[b.ID]
	if !ok {
		return domain.NewNotFoundError("trial", b.ID)
	}
	if cur.Status != from {
		return &domain.StaleStatusError{Entity: "trial", ID: b.ID, Expected: string(from)}
	}
	stored := *b
	r.c.trials[b.ID] = &stored
	return nil
}

// List returns matching trials ordered by trial date, earliest first.
func (r *trialRepository) List(ctx context.Context, f repository.TrialFilter) ([]domain.TrialBooking, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	var out []domain.TrialBooking
	for _, id := range r.c.trialIDs {
		b := r.c.trials[id]
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.CenterID != "" && b.CenterID != f.CenterID {
			continue
		}
		if f.ProductID != "" && b.ProductID != f.ProductID {
			continue
		}
		if f.From != nil && b.TrialDate.Before(*f.From) {
			continue
		}
		if f.To != nil && !b.TrialDate.Before(*f.To) {
			continue
		}
		out = append(out, *b)
	}
	slices.SortStableFunc(out, func(a, b domain.TrialBooking) int {
		return a.TrialDate.Compare(b.TrialDate)
	})
	return out, nil
}

type sanitizationRepository struct {
	c *Container
}

func (r *sanitizationRepository) Append(ctx context.Context, rec *domain.SanitizationRecord) error {
	logger.EnterMethod("memory.sanitizationRepository.Append", "recordID", rec.ID, "orderID", rec.OrderID)
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	for _, existing := range r.c.sanitizations {
		if existing.ID == rec.ID {
			return conflict("sanitization record", rec.ID)
		}
		if rec.TagID != "" && existing.TagID == rec.TagID {
			return conflict("sanitization tag", rec.TagID)
		}
	}
	r.c.sanitizations = append(r.c.sanitizations, *rec)
	return nil
}

// ListRecent returns up to limit records, most recent first. A limit of zero
// or less returns the whole log.
func (r *sanitizationRepository) ListRecent(ctx context.Context, limit int) ([]domain.SanitizationRecord, error) {
	r.c.mu.RLock()
	out := newestFirst(r.c.sanitizations, nil)
	r.c.mu.RUnlock()

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *sanitizationRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.SanitizationRecord, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	return newestFirst(r.c.sanitizations, func(rec domain.SanitizationRecord) bool {
		return rec.OrderID == orderID
	}), nil
}

func newestFirst(log []domain.SanitizationRecord, keep func(domain.SanitizationRecord) bool) []domain.SanitizationRecord {
	var out []domain.SanitizationRecord
	for i := len(log) - 1; i >= 0; i-- {
		if keep == nil || keep(log[i]) {
			out = append(out, log[i])
		}
	}
	slices.SortStableFunc(out, func(a, b domain.SanitizationRecord) int {
		return b.DateTime.Compare(a.DateTime)
	})
	return out
}

type disputeRepository struct {
	c *Container
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	logger.EnterMethod("memory.disputeRepository.Create", "disputeID", d.ID, "orderID", d.OrderID)
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.disputes[d.ID]; ok {
		return conflict("dispute", d.ID)
	}
	stored := *d
	r.c.disputes[d.ID] = &stored
	r.c.disputeIDs = append(r.c.disputeIDs, d.ID)
	return nil
}

func (r *disputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	d, ok := r.c.disputes[id]
	if !ok {
		return nil, domain.NewNotFoundError("dispute", id)
	}
	out := *d
	return &out, nil
}

func (r *disputeRepository) Update(ctx context.Context, d *domain.Dispute, from domain.DisputeStatus) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	cur, ok := r.c.disputes[d.ID]
	if !ok {
		return domain.NewNotFoundError("dispute", d.ID)
	}
	if cur.Status != from {
		return &domain.StaleStatusError{Entity: "dispute", ID: d.ID, Expected: string(from)}
	}
	stored := *d
	r.c.disputes[d.ID] = &stored
	return nil
}

func (r *disputeRepository) List(ctx context.Context, f repository.DisputeFilter) ([]domain.Dispute, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	var out []domain.Dispute
	for i := len(r.c.disputeIDs) - 1; i >= 0; i-- {
		d := r.c.disputes[r.c.disputeIDs[i]]
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && d.CustomerID != f.CustomerID {
			continue
		}
		if f.CenterID != "" && d.CenterID != f.CenterID {
			continue
		}
		if f.OrderID != "" && d.OrderID != f.OrderID {
			continue
		}
		out = append(out, *d)
	}
	slices.SortStableFunc(out, func(a, b domain.Dispute) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

type notificationRepository struct {
	c *Container
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.notifications[n.ID]; ok {
		return conflict("notification", n.ID)
	}
	stored := n.Clone()
	r.c.notifications[n.ID] = &stored
	r.c.noteIDs = append(r.c.noteIDs, n.ID)
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	n, ok := r.c.notifications[id]
	if !ok {
		return nil, domain.NewNotFoundError("notification", id)
	}
	out := n.Clone()
	return &out, nil
}

// List returns the user's notifications, newest first.
func (r *notificationRepository) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	var out []domain.Notification
	for i := len(r.c.noteIDs) - 1; i >= 0; i-- {
		n := r.c.notifications[r.c.noteIDs[i]]
		if n.UserID == userID {
			out = append(out, n.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	n, ok := r.c.notifications[id]
	if !ok || n.UserID != userID {
		return domain.NewNotFoundError("notification", id)
	}
	n.Read = true
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	count := 0
	for _, n := range r.c.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
