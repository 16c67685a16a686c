package models

import "time"

// Book is a published (or draft) work as exposed by the discovery endpoints.
type Book struct {
	ID          string   `json:"id"`
	AuthorID    string   `json:"author_id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Status      string   `json:"status"`
	Visibility  string   `json:"visibility,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	WordsCount    int `json:"words_count"`
	ChaptersCount int `json:"chapters_count"`
	LikesCount    int `json:"likes_count"`
	ReadsCount    int `json:"reads_count"`

	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	Author *BookAuthor `json:"users,omitempty"`

	AverageRating float64 `json:"average_rating,omitempty"`
	RatingsCount  int     `json:"ratings_count,omitempty"`
	CommentsCount int     `json:"comments_count,omitempty"`
}

// BookAuthor is the author block embedded in book responses.
type BookAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Chapter is one chapter of a book, with markdown content.
type Chapter struct {
	ID            string     `json:"id"`
	BookID        string     `json:"book_id"`
	ChapterNumber int        `json:"chapter_number"`
	Title         string     `json:"title"`
	ContentMD     string     `json:"content_md"`
	WordsCount    int        `json:"words_count"`
	IsPublished   bool       `json:"is_published"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}
