package database

import (
	"context"
	"testing"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")

	item := &models.Item{OwnerID: owner.ID, Name: "Drill", Description: "Cordless drill", Available: true}
	require.NoError(t, db.CreateItem(ctx, item))
	assert.NotZero(t, item.ID)

	found, err := db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", found.Name)
	assert.True(t, found.Available)
	assert.Zero(t, found.RequestID)

	found.Available = false
	found.Description = "Cordless drill, battery worn"
	require.NoError(t, db.UpdateItem(ctx, found))

	found, err = db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, found.Available)

	require.NoError(t, db.DeleteItem(ctx, item.ID))
	_, err = db.GetItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRequestLink(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	requester := seedUser(t, db, "Requester", "req@example.com")

	request := &models.ItemRequest{RequesterID: requester.ID, Description: "need a drill"}
	require.NoError(t, db.CreateRequest(ctx, request))

	item := &models.Item{OwnerID: owner.ID, Name: "Drill", Available: true, RequestID: request.ID}
	require.NoError(t, db.CreateItem(ctx, item))

	found, err := db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, found.RequestID)
}

func TestGetItemsByOwner(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	other := seedUser(t, db, "Other", "other@example.com")
	seedItem(t, db, owner, "Drill", true)
	seedItem(t, db, owner, "Saw", false)
	seedItem(t, db, other, "Ladder", true)

	items, err := db.GetItemsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Drill", items[0].Name)
	assert.Equal(t, "Saw", items[1].Name)
}

func TestGetItemsByRequestIDs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	requester := seedUser(t, db, "Requester", "req@example.com")

	r1 := &models.ItemRequest{RequesterID: requester.ID, Description: "need a drill"}
	require.NoError(t, db.CreateRequest(ctx, r1))
	r2 := &models.ItemRequest{RequesterID: requester.ID, Description: "need a saw"}
	require.NoError(t, db.CreateRequest(ctx, r2))

	require.NoError(t, db.CreateItem(ctx, &models.Item{OwnerID: owner.ID, Name: "Drill", Available: true, RequestID: r1.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{OwnerID: owner.ID, Name: "Saw", Available: true, RequestID: r2.ID}))
	seedItem(t, db, owner, "Ladder", true)

	items, err := db.GetItemsByRequestIDs(ctx, []int64{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = db.GetItemsByRequestIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchItems(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	seedItem(t, db, owner, "Cordless Drill", true)
	require.NoError(t, db.CreateItem(ctx, &models.Item{
		OwnerID: owner.ID, Name: "Toolbox", Description: "comes with a DRILL bit set", Available: true,
	}))
	// Unavailable items never match.
	seedItem(t, db, owner, "Broken Drill", false)

	items, err := db.SearchItems(ctx, "drill")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Cordless Drill", items[0].Name)
	assert.Equal(t, "Toolbox", items[1].Name)
}
