package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/librefy/librefy-cli/internal/library"
	"github.com/librefy/librefy-cli/internal/models"
)

func parseListArgs(args []string) (library.Filter, library.SortKey) {
	filter := library.FilterAll
	sortKey := library.SortRecent
	for _, arg := range args {
		switch arg {
		case "all", "reading", "completed", "want_to_read", "offline":
			filter = library.Filter(arg)
		case "recent", "title", "author", "progress":
			sortKey = library.SortKey(arg)
		}
	}
	return filter, sortKey
}

func formatEntry(e models.LibraryEntry, now time.Time) string {
	s := fmt.Sprintf("%-12s %q", e.BookID, e.Title)
	if e.AuthorName != "" {
		s += " by " + e.AuthorName
	}
	if e.ReadingStatus != models.StatusUnset {
		s += fmt.Sprintf(" [%s]", e.ReadingStatus)
	}
	if e.DownloadProgress != nil {
		s += fmt.Sprintf(" downloading %d%%", *e.DownloadProgress)
	} else if e.IsOffline && e.OfflineExpiresAt != nil {
		switch library.ClassifyExpiry(*e.OfflineExpiresAt, now) {
		case library.ExpiryExpired:
			s += " offline:EXPIRED"
		case library.ExpiryExpiringSoon:
			s += fmt.Sprintf(" offline:expires %s", e.OfflineExpiresAt.Format("2006-01-02"))
		default:
			s += " offline"
		}
	}
	return s
}

// List shows the library through an optional filter and sort key, loading the
// first page on demand.
func (a *App) List(ctx context.Context, args []string) error {
	if len(a.library.Entries()) == 0 && a.library.Pagination().Offset == 0 {
		if err := a.library.FetchPage(ctx); err != nil {
			printlnFn("Warning:", err)
		}
	}

	filter, sortKey := parseListArgs(args)
	entries := a.library.View(filter, sortKey)
	if len(entries) == 0 {
		printlnFn("No books to show")
		return nil
	}

	now := time.Now()
	for _, e := range entries {
		printlnFn(formatEntry(e, now))
	}

	p := a.library.Pagination()
	if p.HasMore {
		printlnFn(fmt.Sprintf("Showing %d of %d; type 'more' to load the next page", len(a.library.Entries()), p.Total))
	}
	return nil
}

// More loads the next page, if any.
func (a *App) More(ctx context.Context) error {
	if err := a.library.LoadMore(ctx); err != nil {
		printlnFn("Load more failed:", err)
		return err
	}
	p := a.library.Pagination()
	printlnFn(fmt.Sprintf("Loaded %d of %d", len(a.library.Entries()), p.Total))
	return nil
}

// Refresh reloads the library and licenses from the server. On failure the
// cached collection, if fresh enough, is kept and a warning is shown.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.library.Refresh(ctx); err != nil {
		printlnFn("Warning: showing cached data:", err)
		return nil
	}
	printlnFn(fmt.Sprintf("Library: %d books", a.library.Stats().Total))
	return nil
}

func (a *App) AddBook(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: add <bookID>")
		return nil
	}
	if err := a.library.AddToLibrary(ctx, args[0]); err != nil {
		printlnFn("Add failed:", err)
		return err
	}
	printlnFn("Added", args[0])
	return nil
}

func (a *App) RemoveBook(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: remove <bookID>")
		return nil
	}
	if err := a.library.RemoveFromLibrary(ctx, args[0]); err != nil {
		printlnFn("Remove failed:", err)
		return err
	}
	printlnFn("Removed", args[0])
	return nil
}

// LibraryStats prints the per-shelf counts.
func (a *App) LibraryStats(ctx context.Context) error {
	st := a.library.Stats()
	printlnFn(fmt.Sprintf("Total: %d  Reading: %d  Completed: %d  Want to read: %d  Offline: %d",
		st.Total, st.Reading, st.Completed, st.WantToRead, st.Offline))
	return nil
}
