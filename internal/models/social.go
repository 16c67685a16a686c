package models

import "time"

// BookComment is one comment on a book. Top-level comments may carry a reply
// count; replies carry the id of the comment they answer.
type BookComment struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	BookID          string     `json:"book_id"`
	ParentCommentID string     `json:"parent_comment_id,omitempty"`
	Content         string     `json:"content"`
	IsDeleted       bool       `json:"is_deleted"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`

	UserName     string `json:"user_name"`
	UserUsername string `json:"user_username"`
	UserAvatar   string `json:"user_avatar,omitempty"`
	ReplyCount   int    `json:"reply_count,omitempty"`
}

// CommentPage is one page of comments or replies.
type CommentPage struct {
	Data       []BookComment     `json:"data"`
	Pagination LibraryPagination `json:"pagination"`
}

// BookRating is the caller's own rating record for a book.
type BookRating struct {
	ID        string     `json:"id"`
	Rating    int        `json:"rating"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RatingStats aggregates a book's ratings. Distribution maps the star value
// ("1" through "5") to the number of votes; some endpoints omit it.
type RatingStats struct {
	AverageRating float64        `json:"average_rating"`
	RatingsCount  int            `json:"ratings_count"`
	Distribution  map[string]int `json:"distribution,omitempty"`
}

// RateResult is the server's answer to rating a book: the stored rating plus
// the book's updated aggregates.
type RateResult struct {
	Rating BookRating  `json:"rating"`
	Stats  RatingStats `json:"stats"`
}
