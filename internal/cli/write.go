package cli

import (
	"context"
	"os"

	"github.com/librefy/librefy-cli/internal/services"
)

// NewBook collects book metadata and creates a draft.
func (a *App) NewBook(ctx context.Context) error {
	req := services.BookDraftRequest{}
	var err error

	if req.Title, err = getSimpleText(a.reader, "Enter title", os.Stdout); err != nil {
		return err
	}
	if req.Description, err = getSimpleText(a.reader, "Enter description (optional)", os.Stdout); err != nil {
		return err
	}

	book, err := a.writing.CreateBook(ctx, req)
	if err != nil {
		printlnFn("Create failed:", err)
		return err
	}
	printlnFn("Draft created:", book.ID)
	return nil
}

// NewChapter collects a chapter title and body and appends it to a draft.
func (a *App) NewChapter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: newchapter <bookID>")
		return nil
	}

	req := services.ChapterDraftRequest{}
	var err error

	if req.Title, err = getSimpleText(a.reader, "Enter chapter title", os.Stdout); err != nil {
		return err
	}
	if req.ContentMD, err = GetMultiline(a.reader, "Enter chapter content (markdown)", os.Stdout); err != nil {
		return err
	}

	chapter, err := a.writing.CreateChapter(ctx, args[0], req)
	if err != nil {
		printlnFn("Create failed:", err)
		return err
	}
	printlnFn("Chapter created:", chapter.ID)
	return nil
}

// PublishBook makes a draft publicly visible.
func (a *App) PublishBook(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: publish <bookID>")
		return nil
	}
	book, err := a.writing.PublishBook(ctx, args[0])
	if err != nil {
		printlnFn("Publish failed:", err)
		return err
	}
	printlnFn("Published:", book.Title)
	return nil
}
