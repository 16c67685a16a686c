package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/librefy/librefy-cli/internal/models"
)

func formatComment(c models.BookComment) string {
	if c.IsDeleted {
		return fmt.Sprintf("%-12s [deleted]", c.ID)
	}
	s := fmt.Sprintf("%-12s @%s: %s", c.ID, c.UserUsername, c.Content)
	if c.ReplyCount > 0 {
		s += fmt.Sprintf(" (%d replies)", c.ReplyCount)
	}
	return s
}

// Comments lists a book's comments.
func (a *App) Comments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: comments <bookID>")
		return nil
	}

	page := a.social.Comments(ctx, args[0], 0, 0)
	if len(page.Data) == 0 {
		printlnFn("No comments yet")
		return nil
	}
	for _, c := range page.Data {
		printlnFn(formatComment(c))
	}
	if page.Pagination.Total > len(page.Data) {
		printlnFn(fmt.Sprintf("Showing %d of %d comments", len(page.Data), page.Pagination.Total))
	}
	return nil
}

// Replies lists the replies under one comment.
func (a *App) Replies(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: replies <commentID>")
		return nil
	}

	page := a.social.Replies(ctx, args[0], 0, 0)
	if len(page.Data) == 0 {
		printlnFn("No replies")
		return nil
	}
	for _, c := range page.Data {
		printlnFn(formatComment(c))
	}
	return nil
}

// Comment prompts for text and posts it as a comment on the book, or as a
// reply when a parent comment id is given.
func (a *App) Comment(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: comment <bookID> [parentCommentID]")
		return nil
	}
	parentID := ""
	if len(args) > 1 {
		parentID = args[1]
	}

	content, err := getSimpleText(a.reader, "Comment", os.Stdout)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		printlnFn("Nothing to post")
		return nil
	}

	comment, err := a.social.AddComment(ctx, args[0], content, parentID)
	if err != nil {
		printlnFn("Comment failed:", err)
		return err
	}
	printlnFn("Posted comment", comment.ID)
	return nil
}

// Rate stores a 1 to 5 star rating for the book.
func (a *App) Rate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: rate <bookID> <1-5>")
		return nil
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		printlnFn("Usage: rate <bookID> <1-5>")
		return nil
	}

	result, err := a.social.RateBook(ctx, args[0], rating)
	if err != nil {
		printlnFn("Rating failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Rated %d stars; average is now %.1f (%d ratings)",
		result.Rating.Rating, result.Stats.AverageRating, result.Stats.RatingsCount))
	return nil
}

// Unrate withdraws the caller's rating.
func (a *App) Unrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: unrate <bookID>")
		return nil
	}

	stats, err := a.social.RemoveRating(ctx, args[0])
	if err != nil {
		printlnFn("Remove rating failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Rating removed; average is now %.1f (%d ratings)",
		stats.AverageRating, stats.RatingsCount))
	return nil
}

// Ratings prints the book's rating aggregates with the star distribution.
func (a *App) Ratings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: ratings <bookID>")
		return nil
	}

	stats := a.social.RatingStats(ctx, args[0])
	if stats == nil || stats.RatingsCount == 0 {
		printlnFn("No ratings yet")
		return nil
	}

	printlnFn(fmt.Sprintf("%.1f average over %d ratings", stats.AverageRating, stats.RatingsCount))
	if len(stats.Distribution) > 0 {
		for star := 5; star >= 1; star-- {
			printlnFn(fmt.Sprintf("%d stars: %d", star, stats.Distribution[strconv.Itoa(star)]))
		}
	}
	return nil
}
