package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/librefy/librefy-cli/internal/models"
	"github.com/librefy/librefy-cli/internal/services"
)

const discoverPageSize = 20

func formatBook(b models.Book) string {
	s := fmt.Sprintf("%-12s %q", b.ID, b.Title)
	if b.Author != nil {
		s += " by " + b.Author.Name
	}
	s += fmt.Sprintf("  %d chapters, %d likes", b.ChaptersCount, b.LikesCount)
	return s
}

// Browse lists the most popular published books.
func (a *App) Browse(ctx context.Context) error {
	books := a.books.PublishedBooks(ctx, services.PublishedBooksParams{
		Limit:   discoverPageSize,
		OrderBy: "popular",
	})
	if len(books) == 0 {
		printlnFn("Nothing to show")
		return nil
	}
	for _, b := range books {
		printlnFn(formatBook(b))
	}
	return nil
}

// Search finds published books matching the query.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: search <query>")
		return nil
	}
	query := strings.Join(args, " ")

	books := a.books.Search(ctx, query, discoverPageSize, 0)
	if len(books) == 0 {
		printlnFn("No books found for", strconv.Quote(query))
		return nil
	}
	for _, b := range books {
		printlnFn(formatBook(b))
	}
	return nil
}

// Read prints a published chapter.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: read <bookID> <chapter>")
		return nil
	}
	chapterNumber, err := strconv.Atoi(args[1])
	if err != nil {
		printlnFn("Usage: read <bookID> <chapter>")
		return nil
	}

	chapter, err := a.books.ReadChapter(ctx, args[0], chapterNumber)
	if err != nil {
		printlnFn("Read failed:", err)
		return err
	}

	printlnFn(fmt.Sprintf("== Chapter %d: %s ==", chapter.ChapterNumber, chapter.Title))
	printlnFn(chapter.ContentMD)
	return nil
}
