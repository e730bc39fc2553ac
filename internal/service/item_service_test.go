package service

import (
	"context"
	"testing"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newItemService(store *mockStore, cache *mockCache, bus *capturingBus) *ItemService {
	var c domain.SearchCache
	if cache != nil {
		c = cache
	}
	svc := NewItemService(store, store, store, store, store, c, bus, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestItemCreate(t *testing.T) {
	store := &mockStore{}
	cache := &mockCache{}
	svc := newItemService(store, cache, &capturingBus{})
	ctx := context.Background()

	store.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	store.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Item).ID = 10
	}).Return(nil)
	cache.On("Invalidate", ctx).Return(nil)

	item, err := svc.Create(ctx, &models.Item{Name: "Drill", Available: true}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), item.ID)
	assert.Equal(t, int64(1), item.OwnerID)
	cache.AssertExpectations(t)
}

func TestItemCreate_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown owner", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})
		store.On("GetUserByID", ctx, int64(9)).Return(nil, domain.NotFoundf("user 9"))

		_, err := svc.Create(ctx, &models.Item{Name: "Drill"}, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank name", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})
		store.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)

		_, err := svc.Create(ctx, &models.Item{Name: "   "}, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("unknown request", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})
		store.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
		store.On("GetRequestByID", ctx, int64(424242)).Return(nil, domain.NotFoundf("request 424242"))

		_, err := svc.Create(ctx, &models.Item{Name: "Drill", RequestID: 424242}, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		store.AssertNotCalled(t, "CreateItem", ctx, mock.Anything)
	})

	t.Run("known request accepted", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})
		store.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
		store.On("GetRequestByID", ctx, int64(3)).Return(&models.ItemRequest{ID: 3}, nil)
		store.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

		item, err := svc.Create(ctx, &models.Item{Name: "Drill", RequestID: 3}, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), item.RequestID)
	})
}

func TestItemUpdate(t *testing.T) {
	store := &mockStore{}
	cache := &mockCache{}
	svc := newItemService(store, cache, &capturingBus{})
	ctx := context.Background()

	item := &models.Item{ID: 10, OwnerID: 1, Name: "Drill", Available: true}
	store.On("GetItemByID", ctx, int64(10)).Return(item, nil)
	store.On("UpdateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil)
	cache.On("Invalidate", ctx).Return(nil)

	available := false
	updated, err := svc.Update(ctx, 10, models.ItemPatch{Available: &available}, 1)
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.Equal(t, "Drill", updated.Name)
}

func TestItemUpdate_NotOwner(t *testing.T) {
	store := &mockStore{}
	svc := newItemService(store, nil, &capturingBus{})
	ctx := context.Background()

	store.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)

	name := "Stolen"
	_, err := svc.Update(ctx, 10, models.ItemPatch{Name: &name}, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "UpdateItem", ctx, mock.Anything)
}

func TestItemDelete_NotOwner(t *testing.T) {
	store := &mockStore{}
	svc := newItemService(store, nil, &capturingBus{})
	ctx := context.Background()

	store.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)

	err := svc.Delete(ctx, 10, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemGetView(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 10, OwnerID: 1, Name: "Drill"}
	comments := []*models.Comment{{ID: 1, Text: "good"}}

	t.Run("owner gets booking info", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})

		last := &models.BookingInfo{ID: 5, BookerID: 2}
		next := &models.BookingInfo{ID: 6, BookerID: 3}
		store.On("GetItemByID", ctx, int64(10)).Return(item, nil)
		store.On("GetCommentsByItem", ctx, int64(10)).Return(comments, nil)
		store.On("GetLastBooking", ctx, int64(10), mock.AnythingOfType("time.Time")).Return(last, nil)
		store.On("GetNextBooking", ctx, int64(10), mock.AnythingOfType("time.Time")).Return(next, nil)

		view, err := svc.GetView(ctx, 10, 1)
		require.NoError(t, err)
		assert.Equal(t, last, view.LastBooking)
		assert.Equal(t, next, view.NextBooking)
		assert.Equal(t, comments, view.Comments)
	})

	t.Run("other viewers get comments only", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})

		store.On("GetItemByID", ctx, int64(10)).Return(item, nil)
		store.On("GetCommentsByItem", ctx, int64(10)).Return(comments, nil)

		view, err := svc.GetView(ctx, 10, 2)
		require.NoError(t, err)
		assert.Nil(t, view.LastBooking)
		assert.Nil(t, view.NextBooking)
		store.AssertNotCalled(t, "GetLastBooking", ctx, int64(10), mock.Anything)
	})
}

func TestItemListOwnerItems(t *testing.T) {
	store := &mockStore{}
	svc := newItemService(store, nil, &capturingBus{})
	ctx := context.Background()

	items := []*models.Item{
		{ID: 10, OwnerID: 1, Name: "Drill"},
		{ID: 11, OwnerID: 1, Name: "Saw"},
	}
	store.On("GetItemsByOwner", ctx, int64(1)).Return(items, nil)
	store.On("GetCommentsByItem", ctx, mock.AnythingOfType("int64")).Return(nil, nil)
	store.On("GetLastBooking", ctx, mock.AnythingOfType("int64"), mock.AnythingOfType("time.Time")).Return(nil, nil)
	store.On("GetNextBooking", ctx, mock.AnythingOfType("int64"), mock.AnythingOfType("time.Time")).Return(nil, nil)

	views, err := svc.ListOwnerItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Drill", views[0].Name)
	assert.NotNil(t, views[0].Comments)
}

func TestItemSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("blank query returns empty", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})

		items, err := svc.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Empty(t, items)
		store.AssertNotCalled(t, "SearchItems", ctx, mock.Anything)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		store := &mockStore{}
		cache := &mockCache{}
		svc := newItemService(store, cache, &capturingBus{})

		cached := []*models.Item{{ID: 10, Name: "Drill"}}
		cache.On("Get", ctx, "drill").Return(cached, true, nil)

		items, err := svc.Search(ctx, "  DRILL ")
		require.NoError(t, err)
		assert.Equal(t, cached, items)
		store.AssertNotCalled(t, "SearchItems", ctx, "drill")
	})

	t.Run("cache miss falls through and fills", func(t *testing.T) {
		store := &mockStore{}
		cache := &mockCache{}
		svc := newItemService(store, cache, &capturingBus{})

		found := []*models.Item{{ID: 10, Name: "Drill"}}
		cache.On("Get", ctx, "drill").Return(nil, false, nil)
		store.On("SearchItems", ctx, "drill").Return(found, nil)
		cache.On("Set", ctx, "drill", found).Return(nil)

		items, err := svc.Search(ctx, "drill")
		require.NoError(t, err)
		assert.Equal(t, found, items)
		cache.AssertExpectations(t)
	})

	t.Run("cache errors degrade to the store", func(t *testing.T) {
		store := &mockStore{}
		cache := &mockCache{}
		svc := newItemService(store, cache, &capturingBus{})

		found := []*models.Item{{ID: 10, Name: "Drill"}}
		cache.On("Get", ctx, "drill").Return(nil, false, assert.AnError)
		store.On("SearchItems", ctx, "drill").Return(found, nil)
		cache.On("Set", ctx, "drill", found).Return(assert.AnError)

		items, err := svc.Search(ctx, "drill")
		require.NoError(t, err)
		assert.Equal(t, found, items)
	})
}

func TestAddComment(t *testing.T) {
	store := &mockStore{}
	bus := &capturingBus{}
	svc := newItemService(store, nil, bus)
	ctx := context.Background()

	store.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)
	store.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2, Name: "Booker"}, nil)
	store.On("HasFinishedBooking", ctx, int64(10), int64(2), mock.AnythingOfType("time.Time")).Return(true, nil)
	store.On("CreateComment", ctx, mock.AnythingOfType("*models.Comment")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Comment).ID = 5
	}).Return(nil)

	comment, err := svc.AddComment(ctx, 10, "worked great", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), comment.ID)
	assert.Equal(t, "Booker", comment.AuthorName)
	assert.False(t, comment.Created.IsZero())
	assert.Equal(t, []string{events.EventCommentAdded}, bus.types)
}

func TestAddComment_Gate(t *testing.T) {
	ctx := context.Background()

	t.Run("no finished rental", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})

		store.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)
		store.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
		store.On("HasFinishedBooking", ctx, int64(10), int64(2), mock.AnythingOfType("time.Time")).Return(false, nil)

		_, err := svc.AddComment(ctx, 10, "never used it", 2)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		store.AssertNotCalled(t, "CreateComment", ctx, mock.Anything)
	})

	t.Run("blank text", func(t *testing.T) {
		store := &mockStore{}
		svc := newItemService(store, nil, &capturingBus{})

		store.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)
		store.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil)

		_, err := svc.AddComment(ctx, 10, "   ", 2)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
