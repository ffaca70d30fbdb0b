package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock moves one second forward on every reading.
func tickingClock() store.Clock {
	var mu sync.Mutex
	t := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func sampleOrder(id string) models.Order {
	o := models.Order{
		ID:           id,
		Date:         "2026-03-02",
		CustomerName: "ABC Glass Works",
		Status:       models.OrderPending,
		Items: []models.OrderItem{
			{ItemID: 1, ItemName: "GP Clear", Quantity: 100, RateGiven: decimal.RequireFromString("45.00")},
			{ItemID: 2, ItemName: "SGG Mirror", Quantity: 50, RateGiven: decimal.RequireFromString("85.00")},
		},
	}
	o.Recalculate()
	return o
}

func sampleSlip(id string) models.LoadingSlip {
	return models.LoadingSlip{
		ID:        id,
		SlipNo:    id,
		VehicleNo: "MH-01-AB-1234",
		Status:    models.SlipConfirmed,
		Groups: []models.SlipOrderGroup{
			{OrderID: "ORD-B", CustomerName: "Beta", Items: []models.SlipItem{{ItemID: 3}, {ItemID: 1}}},
			{OrderID: "ORD-A", CustomerName: "Alpha", Items: []models.SlipItem{{ItemID: 2}}},
		},
	}
}

func runOrderStoreContract(t *testing.T, newStores func(t *testing.T) store.Stores) {
	ctx := context.Background()

	t.Run("add and get", func(t *testing.T) {
		s := newStores(t).Orders
		added, err := s.Add(ctx, sampleOrder("ORD-1"))
		require.NoError(t, err)
		assert.Equal(t, 1, added.Version)
		assert.False(t, added.CreatedAt.IsZero())

		got, err := s.Get(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, "ABC Glass Works", got.CustomerName)
		require.Len(t, got.Items, 2)
		assert.Equal(t, 1, got.Items[0].ItemID)
		assert.Equal(t, 2, got.Items[1].ItemID)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(8750)))

		_, err = s.Add(ctx, sampleOrder("ORD-1"))
		assert.ErrorIs(t, err, store.ErrDuplicateID)

		_, err = s.Get(ctx, "ORD-404")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list is newest first", func(t *testing.T) {
		s := newStores(t).Orders
		for _, id := range []string{"ORD-1", "ORD-2", "ORD-3"} {
			_, err := s.Add(ctx, sampleOrder(id))
			require.NoError(t, err)
		}
		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "ORD-3", list[0].ID)
		assert.Equal(t, "ORD-1", list[2].ID)
	})

	t.Run("update bumps version and time", func(t *testing.T) {
		s := newStores(t).Orders
		added, err := s.Add(ctx, sampleOrder("ORD-1"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, "ORD-1", func(o *models.Order) error {
			o.Remarks = "call before delivery"
			o.Items = o.Items[:1]
			o.Recalculate()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.True(t, updated.UpdatedAt.After(added.UpdatedAt))

		got, err := s.Get(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Equal(t, "call before delivery", got.Remarks)
		assert.Len(t, got.Items, 1)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(4500)))
		assert.True(t, got.CreatedAt.Equal(added.CreatedAt))
	})

	t.Run("failed patch changes nothing", func(t *testing.T) {
		s := newStores(t).Orders
		_, err := s.Add(ctx, sampleOrder("ORD-1"))
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = s.Update(ctx, "ORD-1", func(o *models.Order) error {
			o.Remarks = "half written"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Get(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Empty(t, got.Remarks)
		assert.Equal(t, 1, got.Version)

		_, err = s.Update(ctx, "ORD-404", func(o *models.Order) error { return nil })
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete honours check", func(t *testing.T) {
		s := newStores(t).Orders
		_, err := s.Add(ctx, sampleOrder("ORD-1"))
		require.NoError(t, err)

		refuse := errors.New("refused")
		err = s.Delete(ctx, "ORD-1", func(models.Order) error { return refuse })
		assert.ErrorIs(t, err, refuse)
		_, err = s.Get(ctx, "ORD-1")
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "ORD-1", nil))
		_, err = s.Get(ctx, "ORD-1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "ORD-1", nil), store.ErrNotFound)
	})

	t.Run("list by source", func(t *testing.T) {
		s := newStores(t).Orders
		_, err := s.Add(ctx, sampleOrder("ORD-1"))
		require.NoError(t, err)
		for _, id := range []string{"ORD-1-R1", "ORD-1-R2"} {
			r := sampleOrder(id)
			r.SourceOrderID = "ORD-1"
			r.Items = r.Items[1:]
			_, err := s.Add(ctx, r)
			require.NoError(t, err)
		}
		other := sampleOrder("ORD-2-R1")
		other.SourceOrderID = "ORD-2"
		_, err = s.Add(ctx, other)
		require.NoError(t, err)

		split, err := s.ListBySource(ctx, "ORD-1")
		require.NoError(t, err)
		require.Len(t, split, 2)
		assert.Equal(t, "ORD-1-R1", split[0].ID)
		assert.Equal(t, "ORD-1-R2", split[1].ID)
		require.Len(t, split[0].Items, 1)
		assert.Equal(t, 2, split[0].Items[0].ItemID)

		split, err = s.ListBySource(ctx, "ORD-3")
		require.NoError(t, err)
		assert.Empty(t, split)
	})
}

func runSlipStoreContract(t *testing.T, newStores func(t *testing.T) store.Stores) {
	ctx := context.Background()

	t.Run("groups keep their order", func(t *testing.T) {
		s := newStores(t).Slips
		_, err := s.Add(ctx, sampleSlip("LS-2026-0001"))
		require.NoError(t, err)

		got, err := s.Get(ctx, "LS-2026-0001")
		require.NoError(t, err)
		require.Len(t, got.Groups, 2)
		assert.Equal(t, "ORD-B", got.Groups[0].OrderID)
		assert.Equal(t, "ORD-A", got.Groups[1].OrderID)
		require.Len(t, got.Groups[0].Items, 2)
		assert.Equal(t, 3, got.Groups[0].Items[0].ItemID)
		assert.Equal(t, 1, got.Groups[0].Items[1].ItemID)
		assert.Equal(t, "ORD-B", got.Groups[0].Items[0].OrderID)

		_, err = s.Add(ctx, sampleSlip("LS-2026-0001"))
		assert.ErrorIs(t, err, store.ErrDuplicateID)
	})

	t.Run("update touches the header only", func(t *testing.T) {
		s := newStores(t).Slips
		_, err := s.Add(ctx, sampleSlip("LS-2026-0001"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, "LS-2026-0001", func(slip *models.LoadingSlip) error {
			slip.InvoiceNo = "INV-9"
			slip.Status = models.SlipDispatched
			slip.Groups = nil
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		require.NotNil(t, updated.UpdatedAt)

		got, err := s.Get(ctx, "LS-2026-0001")
		require.NoError(t, err)
		assert.Equal(t, "INV-9", got.InvoiceNo)
		assert.Equal(t, models.SlipDispatched, got.Status)
		assert.Len(t, got.Groups, 2)

		_, err = s.Update(ctx, "LS-404", func(*models.LoadingSlip) error { return nil })
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("loaded items", func(t *testing.T) {
		s := newStores(t).Slips
		_, err := s.Add(ctx, sampleSlip("LS-2026-0001"))
		require.NoError(t, err)

		loaded, err := s.LoadedItems(ctx, "ORD-B")
		require.NoError(t, err)
		assert.Equal(t, map[int]string{3: "LS-2026-0001", 1: "LS-2026-0001"}, loaded)

		loaded, err = s.LoadedItems(ctx, "ORD-C")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("a line rides on one slip", func(t *testing.T) {
		s := newStores(t).Slips
		_, err := s.Add(ctx, sampleSlip("LS-2026-0001"))
		require.NoError(t, err)

		clash := sampleSlip("LS-2026-0002")
		clash.Groups = []models.SlipOrderGroup{
			{OrderID: "ORD-C", Items: []models.SlipItem{{ItemID: 1}}},
			{OrderID: "ORD-A", Items: []models.SlipItem{{ItemID: 2}}},
		}
		_, err = s.Add(ctx, clash)
		require.ErrorIs(t, err, store.ErrItemTaken)
		var taken *store.ItemTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, store.ItemTakenError{OrderID: "ORD-A", ItemID: 2, SlipID: "LS-2026-0001"}, *taken)

		// Nothing of the rejected slip was kept
		_, err = s.Get(ctx, "LS-2026-0002")
		assert.ErrorIs(t, err, store.ErrNotFound)
		loaded, err := s.LoadedItems(ctx, "ORD-C")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("concurrent adds claim a line once", func(t *testing.T) {
		s := newStores(t).Slips
		const racers = 8

		var wg sync.WaitGroup
		errs := make([]error, racers)
		for i := range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				slip := sampleSlip(fmt.Sprintf("LS-2026-%04d", i+1))
				slip.Groups = []models.SlipOrderGroup{{OrderID: "ORD-Z", Items: []models.SlipItem{{ItemID: 1}}}}
				_, errs[i] = s.Add(ctx, slip)
			}()
		}
		wg.Wait()

		stored := 0
		for _, err := range errs {
			if err == nil {
				stored++
				continue
			}
			assert.ErrorIs(t, err, store.ErrItemTaken)
		}
		assert.Equal(t, 1, stored)

		loaded, err := s.LoadedItems(ctx, "ORD-Z")
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
	})
}

func runUserAndAuditContract(t *testing.T, newStores func(t *testing.T) store.Stores) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		s := newStores(t).Users
		a, err := s.Add(ctx, models.User{Username: "finance1", Name: "Sarah Finance", Role: "finance"})
		require.NoError(t, err)
		b, err := s.Add(ctx, models.User{Username: "dispatch1", Name: "Mike Dispatch", Role: "dispatch"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		_, err = s.Add(ctx, models.User{Username: "finance1"})
		assert.ErrorIs(t, err, store.ErrDuplicateID)

		got, err := s.FindByUsername(ctx, "dispatch1")
		require.NoError(t, err)
		assert.Equal(t, "Mike Dispatch", got.Name)

		got, err = s.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "finance1", got.Username)

		_, err = s.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("audit", func(t *testing.T) {
		s := newStores(t).Audit
		require.NoError(t, s.Record(ctx, models.AuditLog{EntityType: models.EntityOrder, EntityID: "ORD-1", Action: "approve", ToStatus: "approved"}))
		require.NoError(t, s.Record(ctx, models.AuditLog{EntityType: models.EntityOrder, EntityID: "ORD-2", Action: "hold"}))

		entries, err := s.List(ctx, models.EntityOrder, "ORD-1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "approve", entries[0].Action)
		assert.NotEmpty(t, entries[0].ID)
		assert.False(t, entries[0].CreatedAt.IsZero())
	})
}
