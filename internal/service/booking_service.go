package service

import (
	"context"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking lifecycle: creation, the single
// WAITING -> APPROVED/REJECTED transition, and the state-filtered
// listings.
type BookingService struct {
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Create books an item for the given window. Precondition failures keep
// their distinct kinds and order: unknown booker and unknown item are
// not found; booking your own item is reported as not found on purpose,
// so owners learn nothing they should not; an unavailable item or an
// inverted window is an invalid argument.
func (s *BookingService) Create(ctx context.Context, itemID int64, start, end time.Time, bookerID int64) (*models.Booking, error) {
	booker, err := s.users.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == bookerID {
		return nil, domain.NotFoundf("owner cannot book own item %d", itemID)
	}

	if !item.Available {
		return nil, domain.InvalidArgumentf("item %d is not available for booking", itemID)
	}

	if !start.Before(end) {
		return nil, domain.InvalidArgumentf("booking start must be strictly before end")
	}

	booking := &models.Booking{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Start:      start,
		End:        end,
		Status:     models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID)
	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("booking created")
	return booking, nil
}

// Approve decides a WAITING booking. Only the item's owner may decide;
// a decided booking never changes again. The repository guards the
// transition on the prior status, so two racing decisions cannot both
// win.
func (s *BookingService) Approve(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != callerID {
		return nil, domain.Forbiddenf("only the item owner may decide booking %d", bookingID)
	}

	if booking.Status != models.StatusWaiting {
		return nil, domain.InvalidArgumentf("booking %d is already %s", bookingID, booking.Status)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.bookings.DecideBooking(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.publishEvent(eventType, booking, item.OwnerID)
	s.logger.Info().Int64("booking_id", bookingID).Str("status", status).Msg("booking decided")
	return booking, nil
}

// GetByID returns a booking to its booker or the item's owner. Anyone
// else gets not found so they cannot probe for booking existence.
func (s *BookingService) GetByID(ctx context.Context, bookingID, callerID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID == callerID {
		return booking, nil
	}

	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, domain.NotFoundf("booking %d", bookingID)
	}
	return booking, nil
}

// ListForBooker returns the caller's bookings for a filter state,
// newest start first.
func (s *BookingService) ListForBooker(ctx context.Context, state string, bookerID int64, from, size int) ([]*models.Booking, error) {
	filter, err := s.buildFilter(ctx, state, bookerID, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.GetBookingsByBooker(ctx, bookerID, filter)
}

// ListForOwner returns bookings of all items owned by the caller.
func (s *BookingService) ListForOwner(ctx context.Context, state string, ownerID int64, from, size int) ([]*models.Booking, error) {
	filter, err := s.buildFilter(ctx, state, ownerID, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.GetBookingsByOwner(ctx, ownerID, filter)
}

func (s *BookingService) buildFilter(ctx context.Context, state string, userID int64, from, size int) (domain.BookingFilter, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return domain.BookingFilter{}, err
	}
	if !exists {
		return domain.BookingFilter{}, domain.NotFoundf("user %d", userID)
	}

	if !models.ValidState(state) {
		return domain.BookingFilter{}, domain.InvalidArgumentf("unknown state: %s", state)
	}
	if size <= 0 {
		return domain.BookingFilter{}, domain.InvalidArgumentf("page size must be positive, got %d", size)
	}
	if from < 0 {
		return domain.BookingFilter{}, domain.InvalidArgumentf("page offset must not be negative, got %d", from)
	}

	// Page index arithmetic: from=5,size=10 lands on the same page as
	// from=0,size=10.
	offset := (from / size) * size
	return domain.BookingFilter{
		State:  state,
		Now:    s.now(),
		Limit:  size,
		Offset: offset,
	}, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, ownerID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		ItemID:     booking.ItemID,
		ItemName:   booking.ItemName,
		OwnerID:    ownerID,
		BookerID:   booking.BookerID,
		BookerName: booking.BookerName,
		Status:     booking.Status,
		Start:      booking.Start,
		End:        booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
