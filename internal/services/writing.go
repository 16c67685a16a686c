package services

import (
	"context"
	"fmt"

	"github.com/librefy/librefy-cli/internal/models"
)

// BookDraftRequest carries the editable metadata of a book under authoring.
type BookDraftRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Visibility  string   `json:"visibility,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ChapterDraftRequest carries the editable content of a chapter.
type ChapterDraftRequest struct {
	Title     string `json:"title"`
	ContentMD string `json:"content_md"`
}

// WritingService covers the authoring side: creating and maintaining the
// caller's own books and chapters. Unlike the discovery paths, every
// operation here surfaces its error; silently losing a draft is not an
// acceptable degradation.
type WritingService interface {
	CreateBook(ctx context.Context, req BookDraftRequest) (*models.Book, error)
	UpdateBook(ctx context.Context, bookID string, req BookDraftRequest) (*models.Book, error)
	MyBooks(ctx context.Context) ([]models.Book, error)
	PublishBook(ctx context.Context, bookID string) (*models.Book, error)
	ArchiveBook(ctx context.Context, bookID string) (*models.Book, error)
	DeleteBook(ctx context.Context, bookID string) error

	CreateChapter(ctx context.Context, bookID string, req ChapterDraftRequest) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, bookID, chapterID string, req ChapterDraftRequest) (*models.Chapter, error)
	Chapters(ctx context.Context, bookID string) ([]models.Chapter, error)
	PublishChapter(ctx context.Context, bookID, chapterID string) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, bookID, chapterID string) error
}

type writingService struct {
	api apiClient
}

func NewWritingService(api apiClient) WritingService {
	return &writingService{api: api}
}

func (s *writingService) CreateBook(ctx context.Context, req BookDraftRequest) (*models.Book, error) {
	var resp struct {
		Book models.Book `json:"book"`
	}
	if err := s.api.Post(ctx, "/v1/books/create", req, &resp); err != nil {
		return nil, fmt.Errorf("create book error: %w", err)
	}
	return &resp.Book, nil
}

func (s *writingService) UpdateBook(ctx context.Context, bookID string, req BookDraftRequest) (*models.Book, error) {
	var resp struct {
		Book models.Book `json:"book"`
	}
	if err := s.api.Put(ctx, "/v1/books/"+bookID, req, &resp); err != nil {
		return nil, fmt.Errorf("update book error: %w", err)
	}
	return &resp.Book, nil
}

// MyBooks lists the caller's drafts and published works.
func (s *writingService) MyBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := s.api.Get(ctx, "/v1/books/my-books", &books); err != nil {
		return nil, fmt.Errorf("my books error: %w", err)
	}
	return books, nil
}

func (s *writingService) PublishBook(ctx context.Context, bookID string) (*models.Book, error) {
	var resp struct {
		Book models.Book `json:"book"`
	}
	if err := s.api.Post(ctx, "/v1/books/"+bookID+"/publish", nil, &resp); err != nil {
		return nil, fmt.Errorf("publish book error: %w", err)
	}
	return &resp.Book, nil
}

func (s *writingService) ArchiveBook(ctx context.Context, bookID string) (*models.Book, error) {
	var resp struct {
		Book models.Book `json:"book"`
	}
	if err := s.api.Post(ctx, "/v1/books/"+bookID+"/archive", nil, &resp); err != nil {
		return nil, fmt.Errorf("archive book error: %w", err)
	}
	return &resp.Book, nil
}

func (s *writingService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.api.Delete(ctx, "/v1/books/"+bookID, nil); err != nil {
		return fmt.Errorf("delete book error: %w", err)
	}
	return nil
}

func (s *writingService) CreateChapter(ctx context.Context, bookID string, req ChapterDraftRequest) (*models.Chapter, error) {
	var resp struct {
		Chapter models.Chapter `json:"chapter"`
	}
	if err := s.api.Post(ctx, "/v1/books/"+bookID+"/chapters", req, &resp); err != nil {
		return nil, fmt.Errorf("create chapter error: %w", err)
	}
	return &resp.Chapter, nil
}

func (s *writingService) UpdateChapter(ctx context.Context, bookID, chapterID string, req ChapterDraftRequest) (*models.Chapter, error) {
	var resp struct {
		Chapter models.Chapter `json:"chapter"`
	}
	if err := s.api.Put(ctx, "/v1/books/"+bookID+"/chapters/"+chapterID, req, &resp); err != nil {
		return nil, fmt.Errorf("update chapter error: %w", err)
	}
	return &resp.Chapter, nil
}

func (s *writingService) Chapters(ctx context.Context, bookID string) ([]models.Chapter, error) {
	var chapters []models.Chapter
	if err := s.api.Get(ctx, "/v1/books/"+bookID+"/chapters", &chapters); err != nil {
		return nil, fmt.Errorf("chapters listing error: %w", err)
	}
	return chapters, nil
}

func (s *writingService) PublishChapter(ctx context.Context, bookID, chapterID string) (*models.Chapter, error) {
	var resp struct {
		Chapter models.Chapter `json:"chapter"`
	}
	if err := s.api.Post(ctx, "/v1/books/"+bookID+"/chapters/"+chapterID+"/publish", nil, &resp); err != nil {
		return nil, fmt.Errorf("publish chapter error: %w", err)
	}
	return &resp.Chapter, nil
}

func (s *writingService) DeleteChapter(ctx context.Context, bookID, chapterID string) error {
	if err := s.api.Delete(ctx, "/v1/books/"+bookID+"/chapters/"+chapterID, nil); err != nil {
		return fmt.Errorf("delete chapter error: %w", err)
	}
	return nil
}
