package service

import (
	"context"
	"strings"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// ItemService covers the catalog, the owner-facing item views, and the
// comment gate.
type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	cache    domain.SearchCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	requests domain.RequestRepository,
	cache domain.SearchCache,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ItemService) Create(ctx context.Context, item *models.Item, ownerID int64) (*models.Item, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, domain.InvalidArgumentf("item name must not be blank")
	}
	if item.RequestID != 0 {
		if _, err := s.requests.GetRequestByID(ctx, item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateSearchCache(ctx)
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// Update applies a partial update. Non-owners get not found, matching
// how booking visibility denials are surfaced.
func (s *ItemService) Update(ctx context.Context, itemID int64, patch models.ItemPatch, ownerID int64) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, domain.NotFoundf("only the owner may edit item %d", itemID)
	}

	patch.Apply(item)
	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateSearchCache(ctx)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, itemID, ownerID int64) error {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return domain.NotFoundf("only the owner may delete item %d", itemID)
	}

	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	s.invalidateSearchCache(ctx)
	return nil
}

// GetView assembles the item with its comments. Booking info is
// populated only for the owner: viewing an item is public, its booking
// schedule is not.
func (s *ItemService) GetView(ctx context.Context, itemID, callerID int64) (*models.ItemView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, item, callerID)
}

// ListOwnerItems returns the owner's items, each enriched with booking
// info. One last/next query pair per item; fine at catalog scale.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	items, err := s.items.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.buildView(ctx, item, ownerID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ItemService) buildView(ctx context.Context, item *models.Item, callerID int64) (*models.ItemView, error) {
	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	view := &models.ItemView{Item: *item, Comments: comments}
	if item.OwnerID != callerID {
		return view, nil
	}

	now := s.now()
	if view.LastBooking, err = s.bookings.GetLastBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	if view.NextBooking, err = s.bookings.GetNextBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	return view, nil
}

// Search matches available items by name or description, ignoring
// case. Blank queries return nothing rather than everything.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return []*models.Item{}, nil
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, query); err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("search cache get failed")
		} else if ok {
			return cached, nil
		}
	}

	items, err := s.items.SearchItems(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, items); err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("search cache set failed")
		}
	}
	return items, nil
}

// AddComment lets a booker review an item, but only after a completed
// rental: an approved booking of this item that already ended.
func (s *ItemService) AddComment(ctx context.Context, itemID int64, text string, authorID int64) (*models.Comment, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, domain.InvalidArgumentf("comment text must not be blank")
	}

	now := s.now()
	completed, err := s.bookings.HasFinishedBooking(ctx, itemID, authorID, now)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, domain.InvalidArgumentf("user %d has never completed a rental of item %d", authorID, itemID)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       text,
		Created:    now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID:  comment.ID,
			ItemID:     itemID,
			OwnerID:    item.OwnerID,
			AuthorID:   author.ID,
			AuthorName: author.Name,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

func (s *ItemService) invalidateSearchCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("search cache invalidate failed")
	}
}
