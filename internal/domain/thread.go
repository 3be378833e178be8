package domain

import "time"

// Thread is a discussion post written about a book. CoverImage is set at
// most once, by the illustration pipeline right after creation.
type Thread struct {
	ID         int64
	BookID     int64
	UserID     int64
	Title      string
	Content    string
	CoverImage string
	CreatedAt  time.Time
}
