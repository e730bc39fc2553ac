package models

import "time"

// ItemRequest is a wish for an item that does not exist yet. Items may
// later point back at the request via their RequestID; the Items slice
// is derived at read time, never stored.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []*Item   `json:"items"`
}
