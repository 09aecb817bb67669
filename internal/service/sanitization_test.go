package service_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository/memory"
	"rentwear-backend/internal/service"
	"rentwear-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizationService_RecordSanitization(t *testing.T) {
	f := newFixture(t)
	record := func(status domain.SanitizationStatus) *domain.SanitizationRecord {
		return &domain.SanitizationRecord{
			OrderID:      "ORD-002",
			CleaningType: domain.CleaningTypeChemical,
			ChemicalUsed: "Isopropyl 70%",
			StaffName:    "Anita",
			Status:       status,
		}
	}

	t.Run("Approved records get a tag", func(t *testing.T) {
		r, err := f.sanitizations.RecordSanitization(f.ctx, center, record(domain.SanitizationStatusApproved))
		require.NoError(t, err)
		assert.Regexp(t, `^SANT-[0-9A-F]{12}$`, r.TagID)
		assert.Equal(t, "prod-2", r.ProductID)
		assert.Equal(t, "center-1", r.CenterID)
		assert.False(t, r.DateTime.IsZero())

		notes, err := f.notes.List(f.ctx, center)
		require.NoError(t, err)
		require.NotEmpty(t, notes)
		assert.Equal(t, domain.NotificationTypeSuccess, notes[0].Type)
		assert.Contains(t, notes[0].Message, r.TagID)
	})

	t.Run("Reclean records never carry a tag", func(t *testing.T) {
		in := record(domain.SanitizationStatusRecleanRequired)
		in.TagID = "SANT-FORGED000000"
		r, err := f.sanitizations.RecordSanitization(f.ctx, center, in)
		require.NoError(t, err)
		assert.Empty(t, r.TagID)

		notes, err := f.notes.List(f.ctx, vendor)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationTypeWarning, notes[0].Type)
		assert.Contains(t, notes[0].Message, "needs recleaning")
	})

	t.Run("Tags are unique", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			r, err := f.sanitizations.RecordSanitization(f.ctx, admin, record(domain.SanitizationStatusApproved))
			require.NoError(t, err)
			assert.False(t, seen[r.TagID], "duplicate tag %s", r.TagID)
			seen[r.TagID] = true
		}
	})

	t.Run("Validation", func(t *testing.T) {
		cases := map[string]func(r *domain.SanitizationRecord){
			"missing staff":    func(r *domain.SanitizationRecord) { r.StaffName = "" },
			"bad cleaning":     func(r *domain.SanitizationRecord) { r.CleaningType = "bleach" },
			"bad status":       func(r *domain.SanitizationRecord) { r.Status = "ok" },
			"missing order id": func(r *domain.SanitizationRecord) { r.OrderID = "" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				r := record(domain.SanitizationStatusApproved)
				mutate(r)
				_, err := f.sanitizations.RecordSanitization(f.ctx, center, r)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})

	t.Run("Unknown order", func(t *testing.T) {
		r := record(domain.SanitizationStatusApproved)
		r.OrderID = "ORD-404"
		_, err := f.sanitizations.RecordSanitization(f.ctx, center, r)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Permissions", func(t *testing.T) {
		_, err := f.sanitizations.RecordSanitization(f.ctx, center2, record(domain.SanitizationStatusApproved))
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.sanitizations.RecordSanitization(f.ctx, customer, record(domain.SanitizationStatusApproved))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestSanitizationService_Queries(t *testing.T) {
	f := newFixture(t)
	first := f.approve(t, "ORD-002")
	second := f.approve(t, "ORD-001")
	_, err := f.sanitizations.RecordSanitization(f.ctx, center2, &domain.SanitizationRecord{
		OrderID:      "ORD-003",
		CleaningType: domain.CleaningTypeDryClean,
		StaffName:    "Vikram",
		Status:       domain.SanitizationStatusApproved,
	})
	require.NoError(t, err)

	t.Run("Most recent first", func(t *testing.T) {
		recent, err := f.sanitizations.ListRecent(f.ctx, admin, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "ORD-003", recent[0].OrderID)
		assert.Equal(t, second, recent[1].TagID)
	})

	t.Run("Centers see their own", func(t *testing.T) {
		recent, err := f.sanitizations.ListRecent(f.ctx, center, 0)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, second, recent[0].TagID)
		assert.Equal(t, first, recent[1].TagID)

		_, err = f.sanitizations.ListRecent(f.ctx, vendor, 10)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("For order", func(t *testing.T) {
		records, err := f.sanitizations.ForOrder(f.ctx, customer, "ORD-002")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, first, records[0].TagID)

		_, err = f.sanitizations.ForOrder(f.ctx, center2, "ORD-002")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Approved tag", func(t *testing.T) {
		tag, err := f.sanitizations.ApprovedTag(f.ctx, "ORD-002")
		require.NoError(t, err)
		assert.Equal(t, first, tag)

		tag, err = f.sanitizations.ApprovedTag(f.ctx, "ORD-999")
		require.NoError(t, err)
		assert.Empty(t, tag)
	})
}

func TestSanitizationService_Images(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded().Store()
	images, err := storage.NewLocalStore("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	svc := service.NewSanitizationService(store.Sanitizations, store.Orders, images, nil, stepClock(testStart))

	url, err := svc.UploadImage(ctx, center, "ORD-002", "before", "image/jpeg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Contains(t, url, "/api/v1/images/sanitization/ORD-002/before-")

	key := url[len("http://localhost:8080/api/v1/images/"):]
	rc, err := svc.OpenImage(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	t.Run("Unsupported type", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, center, "ORD-002", "after", "image/gif", bytes.NewReader(nil))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Other center", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, center2, "ORD-002", "after", "image/png", bytes.NewReader(nil))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Storage not configured", func(t *testing.T) {
		bare := service.NewSanitizationService(store.Sanitizations, store.Orders, nil, nil, nil)
		_, err := bare.UploadImage(ctx, center, "ORD-002", "after", "image/png", bytes.NewReader(nil))
		assert.Error(t, err)
	})
}
