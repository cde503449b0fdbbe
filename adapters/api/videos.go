package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

var _ video.Source = (*Client)(nil)

func pageQuery(p video.Page, withSort bool) url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))
	if withSort {
		q.Set("sortBy", p.SortBy)
		q.Set("sortDir", string(p.SortDir))
	}
	return q
}

func (c *Client) listFeed(ctx context.Context, endpoint, path string, q url.Values) (*video.Feed, error) {
	env, err := c.envelope(ctx, endpoint, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	feed, err := c.norm.feed(endpoint, env)
	if err != nil {
		return nil, wrapParse(err)
	}
	return feed, nil
}

func (c *Client) List(ctx context.Context, page video.Page) (*video.Feed, error) {
	return c.listFeed(ctx, "list_videos", videoPostsPath, pageQuery(page, true))
}

func (c *Client) Recent(ctx context.Context, page video.Page) (*video.Feed, error) {
	return c.listFeed(ctx, "recent_videos", videoPostsPath+"/recent", pageQuery(page, false))
}

func (c *Client) Popular(ctx context.Context, page video.Page) (*video.Feed, error) {
	return c.listFeed(ctx, "popular_videos", videoPostsPath+"/popular", pageQuery(page, false))
}

func (c *Client) Search(ctx context.Context, keyword string, page video.Page) (*video.Feed, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperror.NewInvalidInput("search keyword is required", nil)
	}
	q := pageQuery(page, false)
	q.Set("keyword", keyword)
	return c.listFeed(ctx, "search_videos", videoPostsPath+"/search", q)
}

func (c *Client) ByTag(ctx context.Context, tag string, page video.Page) (*video.Feed, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, apperror.NewInvalidInput("tag is required", nil)
	}
	return c.listFeed(ctx, "videos_by_tag", videoPostsPath+"/tag/"+url.PathEscape(tag), pageQuery(page, false))
}

func (c *Client) Get(ctx context.Context, id string) (*video.Video, error) {
	env, err := c.envelope(ctx, "get_video", http.MethodGet, videoPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	v, err := c.norm.single("get_video", env)
	if err != nil {
		return nil, wrapParse(err)
	}
	return v, nil
}

func (c *Client) Views(ctx context.Context, id string) (*video.ViewStats, error) {
	res, err := c.doJSON(ctx, "video_views", http.MethodGet, videoPath(id, "views"), nil, nil)
	if err != nil {
		return nil, err
	}
	stats, err := c.norm.views("video_views", id, res.body)
	if err != nil {
		return nil, wrapParse(err)
	}
	return stats, nil
}

// Thumbnail downloads the thumbnail image bytes and their content type.
func (c *Client) Thumbnail(ctx context.Context, id string) ([]byte, string, error) {
	res, err := c.do(ctx, call{
		endpoint: "video_thumbnail",
		method:   http.MethodGet,
		path:     videoPath(id, "thumbnail"),
		accept:   "image/*",
	})
	if err != nil {
		return nil, "", err
	}
	ct := res.contentType
	if ct == "" {
		ct = http.DetectContentType(res.body)
	}
	return res.body, ct, nil
}

func (c *Client) Like(ctx context.Context, id string) error {
	_, err := c.doJSON(ctx, "like_video", http.MethodPost, videoPath(id, "like"), nil, struct{}{})
	return err
}

func (c *Client) Comments(ctx context.Context, id string) ([]video.Comment, error) {
	env, err := c.envelope(ctx, "list_comments", http.MethodGet, videoPath(id, "comments"), nil, nil)
	if err != nil {
		return nil, err
	}
	out, err := c.norm.comments("list_comments", id, env)
	if err != nil {
		return nil, wrapParse(err)
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, id, text string) (*video.Comment, error) {
	env, err := c.envelope(ctx, "add_comment", http.MethodPost, videoPath(id, "comments"), nil, map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	if isNull(env.Data) {
		return nil, wrapParse(&ParseError{Endpoint: "add_comment", Reason: "missing data"})
	}
	var raw rawComment
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, wrapParse(&ParseError{Endpoint: "add_comment", Reason: "data is not a comment", Err: err})
	}
	cm := c.norm.comment(raw, id)
	return &cm, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.doJSON(ctx, "delete_video", http.MethodDelete, videoPath(id), nil, nil)
	return err
}
