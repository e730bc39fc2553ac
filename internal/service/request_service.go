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

// RequestService creates item requests and enriches them with the
// items offered against them.
type RequestService struct {
	requests domain.RequestRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewRequestService(
	requests domain.RequestRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RequestService) Create(ctx context.Context, description string, requesterID int64) (*models.ItemRequest, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.InvalidArgumentf("request description must not be blank")
	}

	request := &models.ItemRequest{
		RequesterID: requesterID,
		Description: description,
		Created:     s.now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	// No item can reference a request at the instant of its creation.
	request.Items = []*models.Item{}

	if s.eventBus != nil {
		payload := events.RequestEventPayload{
			RequestID:   request.ID,
			RequesterID: requesterID,
			Description: description,
		}
		if err := s.eventBus.PublishJSON(events.EventRequestCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("request_id", request.ID).Msg("publish event error")
		}
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", requesterID).Msg("request created")
	return request, nil
}

// ListOwn returns the caller's requests, newest first, with matching
// items attached.
func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests)
}

// ListOthers returns everyone else's requests for browsing, newest
// first.
func (s *RequestService) ListOthers(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetRequestsFromOthers(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests)
}

// GetByID returns any request to any existing viewer; requests carry no
// ownership restriction, unlike bookings.
func (s *RequestService) GetByID(ctx context.Context, requestID, viewerID int64) (*models.ItemRequest, error) {
	if err := s.requireUser(ctx, viewerID); err != nil {
		return nil, err
	}

	request, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.GetItemsByRequestIDs(ctx, []int64{requestID})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	request.Items = items
	return request, nil
}

// enrich attaches matching items to each request with one batched
// lookup instead of a query per request.
func (s *RequestService) enrich(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequest, error) {
	if len(requests) == 0 {
		return []*models.ItemRequest{}, nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	items, err := s.items.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]*models.Item, len(requests))
	for _, item := range items {
		byRequest[item.RequestID] = append(byRequest[item.RequestID], item)
	}

	for _, r := range requests {
		r.Items = byRequest[r.ID]
		if r.Items == nil {
			r.Items = []*models.Item{}
		}
	}
	return requests, nil
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NotFoundf("user %d", userID)
	}
	return nil
}
