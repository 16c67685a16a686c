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

const (
	defaultCommentsLimit = 50
	defaultRepliesLimit  = 20
)

// SocialService covers the community surface of a book: threaded comments and
// 1 to 5 star ratings.
//
// Listing paths (Comments, Replies, RatingStats) degrade to an empty result on
// failure; mutations surface the error.
type SocialService interface {
	Comments(ctx context.Context, bookID string, limit, offset int) models.CommentPage
	Replies(ctx context.Context, commentID string, limit, offset int) models.CommentPage
	AddComment(ctx context.Context, bookID, content, parentCommentID string) (*models.BookComment, error)
	UpdateComment(ctx context.Context, commentID, content string) (*models.BookComment, error)
	DeleteComment(ctx context.Context, commentID string) error

	RateBook(ctx context.Context, bookID string, rating int) (*models.RateResult, error)
	RemoveRating(ctx context.Context, bookID string) (*models.RatingStats, error)
	RatingStats(ctx context.Context, bookID string) *models.RatingStats
}

type socialService struct {
	api apiClient
	log logging.Logger
}

func NewSocialService(api apiClient, log logging.Logger) SocialService {
	return &socialService{api: api, log: log}
}

// commentRequest is the create/update payload. The parent id is set only when
// replying to another comment.
type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

func pageQuery(limit, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q.Encode()
}

// Comments lists a book's top-level comments. On failure it returns an empty
// page so comment sections simply render nothing.
func (s *socialService) Comments(ctx context.Context, bookID string, limit, offset int) models.CommentPage {
	if limit <= 0 {
		limit = defaultCommentsLimit
	}

	var page models.CommentPage
	endpoint := "/v1/comments/book/" + bookID + "?" + pageQuery(limit, offset)
	if err := s.api.Get(ctx, endpoint, &page); err != nil {
		s.log.Warn(ctx, "comments listing failed", "book_id", bookID, "error", err)
		return models.CommentPage{Data: []models.BookComment{}}
	}
	if page.Data == nil {
		page.Data = []models.BookComment{}
	}
	return page
}

// Replies lists the replies under one comment, oldest first.
func (s *socialService) Replies(ctx context.Context, commentID string, limit, offset int) models.CommentPage {
	if limit <= 0 {
		limit = defaultRepliesLimit
	}

	var page models.CommentPage
	endpoint := "/v1/comments/" + commentID + "/replies?" + pageQuery(limit, offset)
	if err := s.api.Get(ctx, endpoint, &page); err != nil {
		s.log.Warn(ctx, "replies listing failed", "comment_id", commentID, "error", err)
		return models.CommentPage{Data: []models.BookComment{}}
	}
	if page.Data == nil {
		page.Data = []models.BookComment{}
	}
	return page
}

// AddComment posts a comment on the book. A non-empty parentCommentID makes it
// a reply.
func (s *socialService) AddComment(ctx context.Context, bookID, content, parentCommentID string) (*models.BookComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is empty")
	}

	var comment models.BookComment
	body := commentRequest{Content: content, ParentCommentID: parentCommentID}
	if err := s.api.Post(ctx, "/v1/comments/book/"+bookID, body, &comment); err != nil {
		return nil, fmt.Errorf("add comment error: %w", err)
	}
	return &comment, nil
}

func (s *socialService) UpdateComment(ctx context.Context, commentID, content string) (*models.BookComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is empty")
	}

	var comment models.BookComment
	if err := s.api.Put(ctx, "/v1/comments/"+commentID, commentRequest{Content: content}, &comment); err != nil {
		return nil, fmt.Errorf("update comment error: %w", err)
	}
	return &comment, nil
}

func (s *socialService) DeleteComment(ctx context.Context, commentID string) error {
	if err := s.api.Delete(ctx, "/v1/comments/"+commentID, nil); err != nil {
		return fmt.Errorf("delete comment error: %w", err)
	}
	return nil
}

// RateBook stores a 1 to 5 star rating and returns the book's updated
// aggregates. The range is checked before the request goes out.
func (s *socialService) RateBook(ctx context.Context, bookID string, rating int) (*models.RateResult, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	var result models.RateResult
	if err := s.api.Post(ctx, "/v1/ratings/book/"+bookID, map[string]int{"rating": rating}, &result); err != nil {
		return nil, fmt.Errorf("rate book error: %w", err)
	}
	return &result, nil
}

// RemoveRating withdraws the caller's rating and returns the remaining
// aggregates.
func (s *socialService) RemoveRating(ctx context.Context, bookID string) (*models.RatingStats, error) {
	var resp struct {
		Stats models.RatingStats `json:"stats"`
	}
	if err := s.api.Delete(ctx, "/v1/ratings/book/"+bookID, &resp); err != nil {
		return nil, fmt.Errorf("remove rating error: %w", err)
	}
	return &resp.Stats, nil
}

// RatingStats returns the book's rating aggregates, or nil when the lookup
// fails.
func (s *socialService) RatingStats(ctx context.Context, bookID string) *models.RatingStats {
	var stats models.RatingStats
	if err := s.api.Get(ctx, "/v1/ratings/book/"+bookID+"/stats", &stats); err != nil {
		s.log.Warn(ctx, "rating stats lookup failed", "book_id", bookID, "error", err)
		return nil
	}
	return &stats
}
