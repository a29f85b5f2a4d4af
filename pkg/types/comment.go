package types

import "time"

// Comment is free text attached to a facility. Username is denormalized for
// display and is not an owning reference. Comments are immutable.
type Comment struct {
	CommentID  string    `json:"comment_id"`
	FacilityID string    `json:"facility_id"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Note is a private per-user note on a facility.
type Note struct {
	FacilityID string    `json:"facility_id"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	UpdatedAt  time.Time `json:"updated_at"`
}
