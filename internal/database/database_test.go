package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-journal-go/internal/models"
	"trading-journal-go/internal/store"
)

// setupTest opens a fresh sqlite file per test to ensure isolation.
func setupTest(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "journal.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}

func TestDatabase_EmptyListsAreNotNil(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	hs, err := db.ListHoldings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Holding{}, hs)

	ps, err := db.ListPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Position{}, ps)

	orders, err := db.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Order{}, orders)
}

func TestDatabase_OrdersNewestFirst(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	names := []string{"INFY", "TCS", "WIPRO", "HDFC"}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		o := &models.Order{Name: n, Qty: 10, Price: 1500, Mode: models.ModeBuy}
		require.NoError(t, db.CreateOrder(ctx, o))
		require.False(t, o.ID.IsZero())
		ids = append(ids, o.ID.Hex())
	}

	orders, err := db.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, len(names))
	for i, o := range orders {
		j := len(names) - 1 - i
		assert.Equal(t, names[j], o.Name)
		assert.Equal(t, ids[j], o.ID.Hex())
		assert.Equal(t, float64(10), o.Qty)
		assert.Equal(t, float64(1500), o.Price)
		assert.Equal(t, models.ModeBuy, o.Mode)
	}
}

func TestDatabase_HoldingsAndPositions(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	holdings := []models.Holding{
		{Name: "BHARTIARTL", Qty: 2, Avg: 538.05, Price: 541.15, Net: "+0.58%", Day: "+2.99%"},
		{Name: "HDFCBANK", Qty: 2, Avg: 1383.4, Price: 1522.35, Net: "+10.04%", Day: "+0.11%"},
	}
	require.NoError(t, db.InsertHoldings(ctx, holdings))
	assert.False(t, holdings[0].ID.IsZero())

	positions := []models.Position{{Product: "CNC", Name: "EVEREADY", Qty: 2, Avg: 316.27, Price: 312.35, IsLoss: true}}
	require.NoError(t, db.InsertPositions(ctx, positions))

	got, err := db.ListHoldings(ctx)
	require.NoError(t, err)
	assert.Equal(t, holdings, got)

	again, err := db.ListHoldings(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	ps, err := db.ListPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, positions, ps)

	assert.NoError(t, db.InsertHoldings(ctx, nil))
}

func TestDatabase_ExtraFieldsPersist(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	holdings := []models.Holding{{Name: "ITC", Qty: 5, Extra: models.Extra{"exchange": "NSE", "__v": 0}}}
	require.NoError(t, db.InsertHoldings(ctx, holdings))
	positions := []models.Position{{Product: "MIS", Name: "ITC", Extra: models.Extra{"qty": "5"}}}
	require.NoError(t, db.InsertPositions(ctx, positions))

	hs, err := db.ListHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "ITC", hs[0].Name)
	assert.Equal(t, models.Extra{"exchange": "NSE", "__v": float64(0)}, hs[0].Extra)

	ps, err := db.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "5", ps[0].Extra["qty"])
}

func TestDatabase_Users(t *testing.T) {
	db := setupTest(t)
	ctx := context.Background()

	u := &models.User{Email: "a@b.c", Username: "alice", Password: "hash", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, db.CreateUser(ctx, u))

	dup := &models.User{Email: "a@b.c", Username: "bob", Password: "hash"}
	assert.ErrorIs(t, db.CreateUser(ctx, dup), store.ErrDuplicate)

	byEmail, err := db.UserByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "alice", byEmail.Username)
	assert.Equal(t, "hash", byEmail.Password)

	byID, err := db.UserByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", byID.Email)

	_, err = db.UserByEmail(ctx, "nobody@b.c")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = db.UserByID(ctx, "zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDatabase_PingAndClose(t *testing.T) {
	db := setupTest(t)
	assert.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close(context.Background()))
	assert.Error(t, db.Ping(context.Background()))

	_, err := db.ListOrders(context.Background())
	assert.Error(t, err)
}
