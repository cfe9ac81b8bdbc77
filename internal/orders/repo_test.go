package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/pkg/db/models"
	dbtypes "github.com/armory-market/armory-backend/pkg/db/types"
	"github.com/armory-market/armory-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  items TEXT NOT NULL,
  total_units INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func testOrder(id string, userID uuid.UUID, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:     id,
		UserID: userID,
		Items: dbtypes.OrderItems{
			{ProductID: "1", Name: "Shadow Glock", NameLocal: "그림자 글록", PriceUnits: 850000, Quantity: 1},
		},
		TotalUnits: 850000,
		Status:     enums.OrderStatusCompleted,
		CreatedAt:  createdAt,
	}
}

func TestRepositoryCreateIgnoresReplay(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	order := testOrder("order_replay", userID, time.Now())
	require.NoError(t, repo.Create(ctx, order))

	replay := testOrder("order_replay", userID, time.Now())
	replay.TotalUnits = 1
	require.NoError(t, repo.Create(ctx, replay))

	saved, err := repo.FindByID(ctx, "order_replay")
	require.NoError(t, err)
	assert.Equal(t, 850000, saved.TotalUnits)
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, testOrder("order_old", userID, base)))
	require.NoError(t, repo.Create(ctx, testOrder("order_new", userID, base.Add(48*time.Hour))))
	require.NoError(t, repo.Create(ctx, testOrder("order_other", uuid.New(), base.Add(time.Hour))))

	orders, err := repo.ListByUser(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order_new", orders[0].ID)
	assert.Equal(t, "order_old", orders[1].ID)

	limited, err := repo.ListByUser(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "order_new", limited[0].ID)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), "order_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
