package model

import "time"

// Bid is a user's escrowed chip stake on an item. At most one bid exists per
// (item, user) pair; the amount doubles as the vote weight.
type Bid struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	UserID    int64     `json:"user_id"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	UserName      string `json:"user_name,omitempty"`
	UserAvatarURL string `json:"user_avatar_url,omitempty"`
	ItemNumber    int64  `json:"item_number,omitempty"`
	ItemTitle     string `json:"item_title,omitempty"`
	ItemState     string `json:"item_state,omitempty"`
}

// Chip economy constants.
const (
	// MinBid is the smallest stake a bid may hold.
	MinBid = 2

	// ItemCreationCost is the fee debited when requesting a new item. The
	// fee is escrowed as the creator's own bid on the item.
	ItemCreationCost = 20

	// StartingChips is the balance granted to a user on first sync.
	StartingChips = 100

	// CreatorCompletionMultiplier is applied to the creation fee when the
	// item completes (20 spent, 40 back).
	CreatorCompletionMultiplier = 2

	// BidderCompletionMultiplier is applied to each bid amount when the
	// item completes; the product is floored before crediting.
	BidderCompletionMultiplier = 1.5
)
