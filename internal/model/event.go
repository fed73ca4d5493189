package model

import "time"

// Event is a changelog entry published under a unique slug. Exactly one of
// ProductRelease or RandomImprovement is non-nil, matching Type.
type Event struct {
	ID      int64     `json:"id"`
	Author  int64     `json:"author"`
	Title   string    `json:"title,omitempty"`
	Slug    string    `json:"slug"`
	Comment string    `json:"comment,omitempty"`
	Stamp   time.Time `json:"stamp"`
	Type    string    `json:"type"`

	ProductRelease    *ProductRelease    `json:"product_release,omitempty"`
	RandomImprovement *RandomImprovement `json:"random_improvement,omitempty"`

	// Joined fields (not always populated).
	AuthorName      string `json:"author_name,omitempty"`
	AuthorAvatarURL string `json:"author_avatar_url,omitempty"`
}

// Event types.
const (
	EventProductRelease    = "productRelease"
	EventRandomImprovement = "randomImprovement"
)

// ProductRelease groups a set of shipped items under a product version.
type ProductRelease struct {
	Product string  `json:"product"`
	Version float64 `json:"version"`
	ItemIDs []int64 `json:"item_ids"`
}

// RandomImprovement references a single completed item.
type RandomImprovement struct {
	ItemID int64 `json:"item_id"`
}
