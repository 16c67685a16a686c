package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"
)

// PublishedBooksParams narrows a discovery listing. Zero values are omitted
// from the query.
type PublishedBooksParams struct {
	Limit   int
	Offset  int
	OrderBy string
}

// BooksService exposes the public catalog: discovery listings, search, book
// details, likes, and published chapter content.
//
// Listing paths (PublishedBooks, Search) degrade to an empty result on
// failure; detail paths surface the error.
type BooksService interface {
	PublishedBooks(ctx context.Context, params PublishedBooksParams) []models.Book
	Search(ctx context.Context, query string, limit, offset int) []models.Book
	BookDetails(ctx context.Context, bookID string) (*models.Book, error)
	ToggleLike(ctx context.Context, bookID string) (bool, error)
	ReadChapter(ctx context.Context, bookID string, chapterNumber int) (*models.Chapter, error)
}

type booksService struct {
	api apiClient
	log logging.Logger
}

func NewBooksService(api apiClient, log logging.Logger) BooksService {
	return &booksService{api: api, log: log}
}

// PublishedBooks lists the public catalog. On failure it returns an empty
// slice so browsing surfaces simply render nothing.
func (s *booksService) PublishedBooks(ctx context.Context, params PublishedBooksParams) []models.Book {
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.OrderBy != "" {
		q.Set("orderBy", params.OrderBy)
	}
	endpoint := "/v1/books/published"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var books []models.Book
	if err := s.api.Get(ctx, endpoint, &books); err != nil {
		s.log.Warn(ctx, "published books listing failed", "error", err)
		return []models.Book{}
	}
	if books == nil {
		books = []models.Book{}
	}
	return books
}

// Search finds published books matching the query. A blank query short-circuits
// to an empty result without a request.
func (s *booksService) Search(ctx context.Context, query string, limit, offset int) []models.Book {
	if strings.TrimSpace(query) == "" {
		return []models.Book{}
	}

	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var books []models.Book
	if err := s.api.Get(ctx, "/v1/books/search?"+q.Encode(), &books); err != nil {
		s.log.Warn(ctx, "book search failed", "query", query, "error", err)
		return []models.Book{}
	}
	if books == nil {
		books = []models.Book{}
	}
	return books
}

func (s *booksService) BookDetails(ctx context.Context, bookID string) (*models.Book, error) {
	var book models.Book
	if err := s.api.Get(ctx, "/v1/books/"+bookID, &book); err != nil {
		return nil, fmt.Errorf("book details error: %w", err)
	}
	return &book, nil
}

// ToggleLike flips the caller's like on the book and returns the new state.
func (s *booksService) ToggleLike(ctx context.Context, bookID string) (bool, error) {
	var resp struct {
		Liked bool `json:"liked"`
	}
	if err := s.api.Post(ctx, "/v1/books/"+bookID+"/like", nil, &resp); err != nil {
		return false, fmt.Errorf("toggle like error: %w", err)
	}
	return resp.Liked, nil
}

func (s *booksService) ReadChapter(ctx context.Context, bookID string, chapterNumber int) (*models.Chapter, error) {
	var chapter models.Chapter
	path := fmt.Sprintf("/v1/books/%s/chapter/%d", bookID, chapterNumber)
	if err := s.api.Get(ctx, path, &chapter); err != nil {
		return nil, fmt.Errorf("read chapter error: %w", err)
	}
	return &chapter, nil
}
