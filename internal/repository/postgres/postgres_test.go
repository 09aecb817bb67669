package postgres_test

import (
	"context"
	"testing"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{"id", "customer_id", "vendor_id", "product_id", "product_name", "product_image", "center_id",
	"center_name", "rental_price", "deposit_amount", "rental_start", "rental_end", "status", "damage_charge",
	"return_condition", "notes", "created_at", "updated_at"}

func newMock(t *testing.T) (sqlmock.Sqlmock, *postgres.Store) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return mock, postgres.NewStore(db, 30*time.Minute)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, postgres.Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Orders
	ctx := context.Background()
	now := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)

	order := &domain.Order{
		ID:            "ORD-002",
		CustomerID:    "cust-1",
		ProductID:     "prod-2",
		ProductName:   "Bridal Lehenga - Crimson Gold",
		CenterID:      "center-1",
		CenterName:    "Elegance Center - Mumbai",
		RentalPrice:   8000,
		DepositAmount: 15000,
		Status:        domain.OrderStatusTrialBooked,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO orders").
			WithArgs(order.ID, order.CustomerID, "", order.ProductID, order.ProductName, "", order.CenterID, order.CenterName,
				order.RentalPrice, order.DepositAmount, sqlmock.AnyArg(), sqlmock.AnyArg(), "trialBooked",
				sqlmock.AnyArg(), "", "", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, order))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate id", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO orders").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, order)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestOrderRepository_GetByID(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Orders
	ctx := context.Background()
	start := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(orderCols).
			AddRow("ORD-001", "cust-1", "vendor-1", "prod-1", "Royal Kundan Necklace Set", "", "center-1",
				"Elegance Center - Mumbai", 2500, 5000, start, nil, "returned", int64(300), "minor", "", start, start)
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
			WithArgs("ORD-001").
			WillReturnRows(rows)

		o, err := repo.GetByID(ctx, "ORD-001")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusReturned, o.Status)
		assert.Equal(t, domain.ReturnConditionMinor, o.ReturnCondition)
		require.NotNil(t, o.RentalStart)
		assert.Equal(t, start, *o.RentalStart)
		assert.Nil(t, o.RentalEnd)
		require.NotNil(t, o.DamageCharge)
		assert.Equal(t, int64(300), *o.DamageCharge)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
			WithArgs("ORD-404").
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetByID(ctx, "ORD-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "order ORD-404 not found")
	})
}

func TestOrderRepository_Update(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Orders
	ctx := context.Background()
	o := &domain.Order{ID: "ORD-001", Status: domain.OrderStatusReturned, Notes: "late", UpdatedAt: time.Now()}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET status=\\$1 (.+) WHERE id=\\$8 AND status=\\$9").
			WithArgs("returned", "late", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "", sqlmock.AnyArg(), "ORD-001", "rented").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Update(ctx, o, domain.OrderStatusRented))
	})

	t.Run("Status moved by another writer", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs("returned", "late", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "", sqlmock.AnyArg(), "ORD-001", "rented").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, o, domain.OrderStatusRented)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "order ORD-001 was modified concurrently, expected status rented")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrialBookingRepository_Update(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Trials
	ctx := context.Background()
	b := &domain.TrialBooking{ID: "TRIAL-1", Status: domain.TrialStatusConfirmed}

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"Success", 1, nil},
		{"Status moved by another writer", 0, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectExec("UPDATE trial_bookings SET status=\\$1 WHERE id=\\$2 AND status=\\$3").
				WithArgs("confirmed", "TRIAL-1", "pending").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Update(ctx, b, domain.TrialStatusPending)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_List(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Orders
	now := time.Now()

	rows := sqlmock.NewRows(orderCols).
		AddRow("ORD-001", "cust-1", "", "prod-1", "Necklace", "", "center-1", "Mumbai", 2500, 5000, nil, nil, "rented", nil, "", "", now, now)
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE status = \\$1 AND center_id = \\$2 ORDER BY created_at DESC").
		WithArgs("rented", "center-1").
		WillReturnRows(rows)

	orders, err := repo.List(context.Background(), repository.OrderFilter{Status: domain.OrderStatusRented, CenterID: "center-1"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].DamageCharge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrialBookingRepository_Create(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Trials
	ctx := context.Background()
	trialDate := time.Date(2026, 3, 5, 11, 20, 0, 0, time.UTC)
	b := &domain.TrialBooking{ID: "TRIAL-9", CustomerID: "cust-2", ProductID: "prod-2", CenterID: "center-1",
		TrialDate: trialDate, Status: domain.TrialStatusPending, CreatedAt: trialDate}

	t.Run("Stores slot start", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO trial_bookings").
			WithArgs("TRIAL-9", "cust-2", "", "", "prod-2", "", "center-1", "", trialDate, "pending", trialDate,
				time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Create(ctx, b))
	})

	t.Run("Slot taken", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO trial_bookings").WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_trial_bookings_slot"})
		assert.ErrorIs(t, repo.Create(ctx, b), domain.ErrConflict)
	})
}

func TestTrialBookingRepository_ListWindow(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Trials
	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "customer_id", "customer_name", "customer_phone", "product_id", "product_name",
		"center_id", "center_name", "trial_date", "status", "created_at"}).
		AddRow("TRIAL-001", "cust-1", "", "", "prod-2", "Lehenga", "center-1", "Mumbai", from.Add(11*time.Hour), "confirmed", from)
	mock.ExpectQuery("SELECT (.+) FROM trial_bookings WHERE status = \\$1 AND trial_date >= \\$2 AND trial_date < \\$3 ORDER BY trial_date ASC").
		WithArgs("confirmed", from, to).
		WillReturnRows(rows)

	trials, err := repo.List(context.Background(), repository.TrialFilter{Status: domain.TrialStatusConfirmed, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, domain.TrialStatusConfirmed, trials[0].Status)
}

func TestSanitizationRepository(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Sanitizations
	ctx := context.Background()
	now := time.Now()

	t.Run("Append reclean stores null tag", func(t *testing.T) {
		rec := &domain.SanitizationRecord{ID: "san-1", OrderID: "ORD-001", CleaningType: domain.CleaningTypeSteam,
			StaffName: "Priya", DateTime: now, Status: domain.SanitizationStatusRecleanRequired}
		mock.ExpectExec("INSERT INTO sanitization_records").
			WithArgs("san-1", "ORD-001", "", "", "steam", "", "Priya", now, "", "", "recleanRequired", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Append(ctx, rec))
	})

	t.Run("List recent with limit", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "center_id", "cleaning_type", "chemical_used",
			"staff_name", "date_time", "before_image_url", "after_image_url", "status", "tag_id"}).
			AddRow("san-2", "ORD-001", "prod-1", "center-1", "uv", "", "Priya", now, "", "", "approved", "SANT-0A1B2C3D4E5F").
			AddRow("san-1", "ORD-001", "prod-1", "center-1", "steam", "", "Priya", now, "", "", "recleanRequired", nil)
		mock.ExpectQuery("SELECT (.+) FROM sanitization_records ORDER BY date_time DESC, seq DESC LIMIT \\$1").
			WithArgs(5).
			WillReturnRows(rows)

		recs, err := repo.ListRecent(ctx, 5)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.True(t, recs[0].HasValidTag())
		assert.Empty(t, recs[1].TagID)
	})

	t.Run("List by order breaks timestamp ties by insert order", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "center_id", "cleaning_type", "chemical_used",
			"staff_name", "date_time", "before_image_url", "after_image_url", "status", "tag_id"}).
			AddRow("san-2", "ORD-001", "prod-1", "center-1", "uv", "", "Priya", now, "", "", "recleanRequired", nil).
			AddRow("san-1", "ORD-001", "prod-1", "center-1", "steam", "", "Priya", now, "", "", "approved", "SANT-0A1B2C3D4E5F")
		mock.ExpectQuery("SELECT (.+) FROM sanitization_records WHERE order_id = \\$1 ORDER BY date_time DESC, seq DESC").
			WithArgs("ORD-001").
			WillReturnRows(rows)

		recs, err := repo.ListByOrder(ctx, "ORD-001")
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "san-2", recs[0].ID)
		assert.False(t, recs[0].HasValidTag())
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepository_Update(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Disputes

	d := &domain.Dispute{ID: "DSP-1", Status: domain.DisputeStatusEscalated, UpdatedAt: time.Now()}

	mock.ExpectExec("UPDATE disputes SET status=\\$1, updated_at=\\$2 WHERE id=\\$3 AND status=\\$4").
		WithArgs("escalated", sqlmock.AnyArg(), "DSP-1", "open").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Update(context.Background(), d, domain.DisputeStatusOpen))

	mock.ExpectExec("UPDATE disputes").
		WithArgs("escalated", sqlmock.AnyArg(), "DSP-1", "open").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), d, domain.DisputeStatusOpen)
	var stale *domain.StaleStatusError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "dispute", stale.Entity)
	assert.Equal(t, "open", stale.Expected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Notifications
	ctx := context.Background()

	t.Run("Create with attributes", func(t *testing.T) {
		n := &domain.Notification{ID: "n-1", UserID: "cust-1", Role: domain.RoleCustomer, Message: "hi",
			Type: domain.NotificationTypeInfo, Attributes: map[string]string{"order_id": "ORD-001"}, CreatedAt: time.Now()}
		mock.ExpectExec("INSERT INTO notifications").
			WithArgs("n-1", "cust-1", "customer", "hi", "info", false, []byte(`{"order_id":"ORD-001"}`), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Create(ctx, n))
	})

	t.Run("Mark read", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE WHERE id = \\$1 AND user_id = \\$2").
			WithArgs("n-1", "cust-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.MarkAsRead(ctx, "n-1", "cust-1"))
	})

	t.Run("Mark read for another user", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications").
			WithArgs("n-1", "cust-2").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.MarkAsRead(ctx, "n-1", "cust-2"), domain.ErrNotFound)
	})

	t.Run("Count unread", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications").
			WithArgs("cust-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		count, err := repo.CountUnread(ctx, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("List decodes attributes", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "role", "message", "type", "is_read", "attributes", "created_at"}).
			AddRow("n-1", "cust-1", "customer", "hi", "info", true, []byte(`{"order_id":"ORD-001"}`), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM notifications WHERE user_id = \\$1").
			WithArgs("cust-1").
			WillReturnRows(rows)
		notes, err := repo.List(ctx, "cust-1")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "ORD-001", notes[0].Attributes["order_id"])
		assert.True(t, notes[0].Read)
	})
}

func TestPayoutRepository(t *testing.T) {
	mock, store := newMock(t)
	repo := store.Repositories().Payouts
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cols := []string{"id", "order_id", "vendor_id", "gross", "admin_commission", "center_share", "net", "status", "created_at", "updated_at"}

	t.Run("Second payout for an order conflicts", func(t *testing.T) {
		p := &domain.Payout{ID: "PAY-2", OrderID: "ORD-001", VendorID: "vendor-1", Gross: 2500, AdminCommission: 375,
			CenterShare: 250, Net: 1875, Status: domain.PayoutStatusPending, CreatedAt: now, UpdatedAt: now}
		mock.ExpectExec("INSERT INTO payouts").
			WithArgs("PAY-2", "ORD-001", "vendor-1", int64(2500), int64(375), int64(250), int64(1875), "pending", now, now).
			WillReturnError(&pq.Error{Code: "23505"})

		assert.ErrorIs(t, repo.Create(ctx, p), domain.ErrConflict)
	})

	t.Run("List by vendor and status", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).AddRow("PAY-1", "ORD-003", "vendor-2", 3500, 525, 350, 2625, "pending", now, now)
		mock.ExpectQuery("SELECT (.+) FROM payouts WHERE status = \\$1 AND vendor_id = \\$2 ORDER BY created_at DESC").
			WithArgs("pending", "vendor-2").
			WillReturnRows(rows)

		payouts, err := repo.List(ctx, repository.PayoutFilter{Status: domain.PayoutStatusPending, VendorID: "vendor-2"})
		require.NoError(t, err)
		require.Len(t, payouts, 1)
		assert.Equal(t, int64(2625), payouts[0].Net)
	})

	t.Run("Release loses a race", func(t *testing.T) {
		p := &domain.Payout{ID: "PAY-1", Status: domain.PayoutStatusReleased, UpdatedAt: now}
		mock.ExpectExec("UPDATE payouts SET status=\\$1, updated_at=\\$2 WHERE id=\\$3 AND status=\\$4").
			WithArgs("released", now, "PAY-1", "pending").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, p, domain.PayoutStatusPending), domain.ErrConflict)
	})

	t.Run("Missing payout", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payouts WHERE id = \\$1").
			WithArgs("PAY-404").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetByID(ctx, "PAY-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
