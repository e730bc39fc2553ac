package domain

import (
	"context"
	"time"

	"lendhub/internal/models"
)

// UserRepository is the identity store contract.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ItemRepository is the catalog store contract.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
}

// BookingFilter selects a page of bookings for one filter state. Now is
// passed in so time-relative states are evaluated against a single
// instant per request.
type BookingFilter struct {
	State  string
	Now    time.Time
	Limit  int
	Offset int
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// DecideBooking sets the terminal status iff the booking is still
	// WAITING; a booking already decided by a concurrent caller yields
	// ErrInvalidArgument.
	DecideBooking(ctx context.Context, id int64, status string) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, f BookingFilter) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64, f BookingFilter) ([]*models.Booking, error)
	// GetLastBooking returns the approved booking with the greatest end
	// before now, or nil when the item has none.
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingInfo, error)
	// GetNextBooking returns the approved booking with the smallest
	// start after now, or nil when the item has none.
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingInfo, error)
	// HasFinishedBooking reports whether booker has at least one
	// approved booking on the item that ended before now.
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	GetRequestsFromOthers(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
}

// SearchCache keeps recent item-search results close to the API.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]*models.Item, bool, error)
	Set(ctx context.Context, query string, items []*models.Item) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
