package model

import "time"

// DevLogMessage is an admin-authored progress note on an item.
type DevLogMessage struct {
	ID       int64     `json:"id"`
	ItemID   int64     `json:"item_id"`
	AuthorID int64     `json:"author_id"`
	Stamp    time.Time `json:"stamp"`
	Message  string    `json:"message"`

	// Joined fields (not always populated).
	AuthorName      string `json:"author_name,omitempty"`
	AuthorAvatarURL string `json:"author_avatar_url,omitempty"`
	ItemNumber      int64  `json:"item_number,omitempty"`
	ItemTitle       string `json:"item_title,omitempty"`
}

// Cancellation is the audit record written when an admin cancels an item.
type Cancellation struct {
	ID      int64     `json:"id"`
	ItemID  int64     `json:"item_id"`
	AdminID int64     `json:"admin_id"`
	Reason  string    `json:"reason"`
	Stamp   time.Time `json:"stamp"`

	// Joined fields (not always populated).
	AdminName string `json:"admin_name,omitempty"`
}
