package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	RequestID   int64     `json:"request_id,omitempty"` // 0 when the item answers no request
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (p ItemPatch) Apply(i *Item) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Available != nil {
		i.Available = *p.Available
	}
}

// ItemView is the item as shown to a viewer: the item itself, its
// comments, and, for the owner only, the closest past and future
// approved bookings.
type ItemView struct {
	Item
	Comments    []*Comment   `json:"comments"`
	LastBooking *BookingInfo `json:"last_booking,omitempty"`
	NextBooking *BookingInfo `json:"next_booking,omitempty"`
}
