// Package models defines the data types exchanged with the Librefy API and
// held by the client's in-memory state.
package models

import "time"

// ReadingStatus is the user-assigned shelf for a library entry.
type ReadingStatus string

const (
	StatusUnset      ReadingStatus = ""
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
	StatusWantToRead ReadingStatus = "want_to_read"
)

// LibraryEntry is one row of the user's library: a mirror of the server-side
// membership record plus the locally mutable offline/download state.
//
// DownloadProgress and OfflineExpiresAt are mutually exclusive phases: a
// download in progress has no expiry yet; once it completes, progress is
// cleared and the expiry is set.
type LibraryEntry struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	BookID      string     `json:"book_id"`
	SavedAt     *time.Time `json:"saved_at,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Status      string     `json:"status,omitempty"`

	WordsCount    int `json:"words_count"`
	ChaptersCount int `json:"chapters_count"`
	LikesCount    int `json:"likes_count"`
	ReadsCount    int `json:"reads_count"`

	AuthorName     string `json:"author_name,omitempty"`
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorAvatar   string `json:"author_avatar,omitempty"`

	ReadingStatus    ReadingStatus `json:"reading_status,omitempty"`
	Progress         int           `json:"progress,omitempty"`
	IsOffline        bool          `json:"is_offline,omitempty"`
	DownloadProgress *int          `json:"download_progress,omitempty"`
	OfflineExpiresAt *time.Time    `json:"offline_expires_at,omitempty"`
}

// LibraryPagination mirrors the server's pagination block.
type LibraryPagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// LibraryPage is one page of library entries as returned by the server.
type LibraryPage struct {
	Data       []LibraryEntry    `json:"data"`
	Pagination LibraryPagination `json:"pagination"`
}
