package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/librefy/librefy-cli/internal/models"
)

func viewEntry(bookID, title, author string, status models.ReadingStatus) models.LibraryEntry {
	return models.LibraryEntry{
		BookID:        bookID,
		Title:         title,
		AuthorName:    author,
		ReadingStatus: status,
	}
}

func savedAt(e models.LibraryEntry, at time.Time) models.LibraryEntry {
	e.SavedAt = &at
	return e
}

func TestProject_FilterPredicates(t *testing.T) {
	offline := viewEntry("b4", "D", "d", models.StatusUnset)
	offline.IsOffline = true
	entries := []models.LibraryEntry{
		viewEntry("b1", "A", "a", models.StatusReading),
		viewEntry("b2", "B", "b", models.StatusCompleted),
		viewEntry("b3", "C", "c", models.StatusWantToRead),
		offline,
	}

	ids := func(es []models.LibraryEntry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.BookID
		}
		return out
	}

	require.Len(t, Project(entries, FilterAll, SortTitle), 4)
	require.Equal(t, []string{"b1"}, ids(Project(entries, FilterReading, SortTitle)))
	require.Equal(t, []string{"b2"}, ids(Project(entries, FilterCompleted, SortTitle)))
	require.Equal(t, []string{"b3"}, ids(Project(entries, FilterWantToRead, SortTitle)))
	require.Equal(t, []string{"b4"}, ids(Project(entries, FilterOffline, SortTitle)))
}

func TestProject_SortTitleCaseInsensitive(t *testing.T) {
	entries := []models.LibraryEntry{
		viewEntry("b1", "banana", "", models.StatusUnset),
		viewEntry("b2", "Apple", "", models.StatusUnset),
		viewEntry("b3", "cherry", "", models.StatusUnset),
	}

	got := Project(entries, FilterAll, SortTitle)
	require.Equal(t, "Apple", got[0].Title)
	require.Equal(t, "banana", got[1].Title)
	require.Equal(t, "cherry", got[2].Title)
}

func TestProject_SortRecentNewestFirstMissingLast(t *testing.T) {
	now := time.Now()
	entries := []models.LibraryEntry{
		savedAt(viewEntry("old", "Old", "", models.StatusUnset), now.Add(-48*time.Hour)),
		viewEntry("never", "Never", "", models.StatusUnset),
		savedAt(viewEntry("new", "New", "", models.StatusUnset), now),
	}

	got := Project(entries, FilterAll, SortRecent)
	require.Equal(t, "new", got[0].BookID)
	require.Equal(t, "old", got[1].BookID)
	require.Equal(t, "never", got[2].BookID)
}

func TestProject_SortProgressDescending(t *testing.T) {
	a := viewEntry("b1", "A", "", models.StatusUnset)
	a.Progress = 10
	b := viewEntry("b2", "B", "", models.StatusUnset)
	b.Progress = 90
	c := viewEntry("b3", "C", "", models.StatusUnset)

	got := Project([]models.LibraryEntry{a, b, c}, FilterAll, SortProgress)
	require.Equal(t, "b2", got[0].BookID)
	require.Equal(t, "b1", got[1].BookID)
	require.Equal(t, "b3", got[2].BookID)
}

func TestProject_PureAndIdempotent(t *testing.T) {
	entries := []models.LibraryEntry{
		viewEntry("b1", "Zebra", "", models.StatusReading),
		viewEntry("b2", "Apple", "", models.StatusReading),
	}
	before := make([]models.LibraryEntry, len(entries))
	copy(before, entries)

	first := Project(entries, FilterReading, SortTitle)
	second := Project(entries, FilterReading, SortTitle)

	require.Equal(t, first, second)
	require.Equal(t, before, entries, "input slice must not be reordered")

	// Projecting an already projected slice changes nothing.
	require.Equal(t, first, Project(first, FilterReading, SortTitle))
}

func TestProject_UnknownFilterShowsAll(t *testing.T) {
	entries := []models.LibraryEntry{
		viewEntry("b1", "A", "", models.StatusReading),
		viewEntry("b2", "B", "", models.StatusUnset),
	}
	require.Len(t, Project(entries, Filter("bogus"), SortTitle), 2)
}
