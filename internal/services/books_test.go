package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/librefy/librefy-cli/internal/models"
)

func TestPublishedBooks_BuildsQuery(t *testing.T) {
	api := newFakeAPI()
	api.responses["GET /v1/books/published?limit=10&offset=20&orderBy=popular"] = []models.Book{
		{ID: "b1", Title: "One"},
	}
	svc := NewBooksService(api, discardLogger())

	books := svc.PublishedBooks(context.Background(), PublishedBooksParams{Limit: 10, Offset: 20, OrderBy: "popular"})
	require.Len(t, books, 1)
	require.Equal(t, "b1", books[0].ID)
}

func TestPublishedBooks_NoParamsNoQuery(t *testing.T) {
	api := newFakeAPI()
	svc := NewBooksService(api, discardLogger())

	books := svc.PublishedBooks(context.Background(), PublishedBooksParams{})
	require.NotNil(t, books)
	require.Empty(t, books)
	require.Equal(t, []string{"GET /v1/books/published"}, api.calls)
}

func TestPublishedBooks_FailureDegradesToEmpty(t *testing.T) {
	api := newFakeAPI()
	api.errs["GET /v1/books/published"] = errors.New("down")
	svc := NewBooksService(api, discardLogger())

	books := svc.PublishedBooks(context.Background(), PublishedBooksParams{})
	require.NotNil(t, books)
	require.Empty(t, books)
}

func TestSearch_BlankQuerySkipsRequest(t *testing.T) {
	api := newFakeAPI()
	svc := NewBooksService(api, discardLogger())

	books := svc.Search(context.Background(), "   ", 10, 0)
	require.Empty(t, books)
	require.Empty(t, api.calls)
}

func TestSearch_EncodesQuery(t *testing.T) {
	api := newFakeAPI()
	api.responses["GET /v1/books/search?limit=5&q=dark+tower"] = []models.Book{{ID: "b1"}}
	svc := NewBooksService(api, discardLogger())

	books := svc.Search(context.Background(), "dark tower", 5, 0)
	require.Len(t, books, 1)
}

func TestBookDetails_SurfacesError(t *testing.T) {
	api := newFakeAPI()
	api.errs["GET /v1/books/b1"] = errors.New("not found")
	svc := NewBooksService(api, discardLogger())

	_, err := svc.BookDetails(context.Background(), "b1")
	require.Error(t, err)
}

func TestToggleLike_ReturnsNewState(t *testing.T) {
	api := newFakeAPI()
	api.responses["POST /v1/books/b1/like"] = map[string]bool{"liked": true}
	svc := NewBooksService(api, discardLogger())

	liked, err := svc.ToggleLike(context.Background(), "b1")
	require.NoError(t, err)
	require.True(t, liked)
}

func TestReadChapter_BuildsPath(t *testing.T) {
	api := newFakeAPI()
	api.responses["GET /v1/books/b1/chapter/3"] = models.Chapter{ID: "c3", ChapterNumber: 3, Title: "III"}
	svc := NewBooksService(api, discardLogger())

	chapter, err := svc.ReadChapter(context.Background(), "b1", 3)
	require.NoError(t, err)
	require.Equal(t, 3, chapter.ChapterNumber)
}
