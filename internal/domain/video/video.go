package video

import (
	"context"
	"strings"
	"time"
)

const AnonymousUserName = "Anonymous"

type Video struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	VideoURL      string    `json:"video_url"`
	Location      *Location `json:"location,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	Likes         int       `json:"likes"`
	CommentsCount int       `json:"comments_count"`
	ViewsCount    int       `json:"views_count"`
	// IsLiked is client-local. The feed endpoints do not report the viewer's like state.
	IsLiked bool `json:"is_liked"`
}

// ToggleLike flips the local like flag after the server accepted a like call.
func (v *Video) ToggleLike() {
	v.IsLiked = !v.IsLiked
	if v.IsLiked {
		v.Likes++
		return
	}
	if v.Likes > 0 {
		v.Likes--
	}
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ViewStats struct {
	VideoID      string     `json:"video_id"`
	Title        string     `json:"title"`
	ViewsCount   int        `json:"views_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
}

// Feed is one page of normalized videos. Paging fields are zero when the
// server did not send them.
type Feed struct {
	Videos      []Video `json:"videos"`
	CurrentPage int     `json:"current_page"`
	TotalItems  int64   `json:"total_items"`
	TotalPages  int     `json:"total_pages"`
	PageSize    int     `json:"page_size"`
}

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

type Page struct {
	Page    int
	Size    int
	SortBy  string
	SortDir SortDir
}

// Normalize fills the server defaults: page 0, size 10, newest first.
func (p Page) Normalize() Page {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 || p.Size > 100 {
		p.Size = 10
	}
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	if p.SortDir != SortAsc {
		p.SortDir = SortDesc
	}
	return p
}

// NormalizeTags trims, drops empties and removes duplicates keeping the
// first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

type Source interface {
	List(ctx context.Context, page Page) (*Feed, error)
	Get(ctx context.Context, id string) (*Video, error)
	Recent(ctx context.Context, page Page) (*Feed, error)
	Popular(ctx context.Context, page Page) (*Feed, error)
	Search(ctx context.Context, keyword string, page Page) (*Feed, error)
	ByTag(ctx context.Context, tag string, page Page) (*Feed, error)
	Views(ctx context.Context, id string) (*ViewStats, error)
	Thumbnail(ctx context.Context, id string) ([]byte, string, error)
	Like(ctx context.Context, id string) error
	Comments(ctx context.Context, id string) ([]Comment, error)
	AddComment(ctx context.Context, id, text string) (*Comment, error)
	Delete(ctx context.Context, id string) error
}
