package library

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/librefy/librefy-cli/internal/models"
)

// Filter selects which library entries a view shows.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterReading    Filter = "reading"
	FilterCompleted  Filter = "completed"
	FilterWantToRead Filter = "want_to_read"
	FilterOffline    Filter = "offline"
)

// SortKey orders a library view.
type SortKey string

const (
	SortRecent   SortKey = "recent"
	SortTitle    SortKey = "title"
	SortAuthor   SortKey = "author"
	SortProgress SortKey = "progress"
)

func matches(e models.LibraryEntry, f Filter) bool {
	switch f {
	case FilterReading:
		return e.ReadingStatus == models.StatusReading
	case FilterCompleted:
		return e.ReadingStatus == models.StatusCompleted
	case FilterWantToRead:
		return e.ReadingStatus == models.StatusWantToRead
	case FilterOffline:
		return e.IsOffline
	default:
		return true
	}
}

func savedAtOrZero(e models.LibraryEntry) time.Time {
	if e.SavedAt == nil {
		return time.Time{}
	}
	return *e.SavedAt
}

// Project derives the display ordering of entries for a filter and sort key.
// It is a pure function of its input: the same collection always yields the
// same ordering, and the input slice is never modified.
func Project(entries []models.LibraryEntry, f Filter, s SortKey) []models.LibraryEntry {
	out := make([]models.LibraryEntry, 0, len(entries))
	for _, e := range entries {
		if matches(e, f) {
			out = append(out, e)
		}
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch s {
		case SortTitle:
			return coll.CompareString(a.Title, b.Title) < 0
		case SortAuthor:
			return coll.CompareString(a.AuthorName, b.AuthorName) < 0
		case SortProgress:
			return a.Progress > b.Progress
		default: // SortRecent: newest first, missing timestamps sort oldest
			return savedAtOrZero(a).After(savedAtOrZero(b))
		}
	})
	return out
}
