package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/khoahotran/jutjub/internal/domain/video"
)

// ParseError reports a response body that does not have the documented
// envelope shape. Tolerable field-level problems never produce it.
type ParseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s response: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s response: %s", e.Endpoint, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

type envelope struct {
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	CurrentPage *int            `json:"currentPage"`
	TotalItems  *int64          `json:"totalItems"`
	TotalPages  *int            `json:"totalPages"`
	PageSize    *int            `json:"pageSize"`
}

type rawVideo struct {
	ID               json.RawMessage `json:"id"`
	Title            *string         `json:"title"`
	VideoDescription *string         `json:"videoDescription"`
	Tags             json.RawMessage `json:"tags"`
	Location         json.RawMessage `json:"location"`
	CreatedAt        json.RawMessage `json:"createdAt"`
	UserID           json.RawMessage `json:"userId"`
	UserName         *string         `json:"userName"`
	LikesCount       json.RawMessage `json:"likesCount"`
	CommentsCount    json.RawMessage `json:"commentsCount"`
	ViewsCount       json.RawMessage `json:"viewsCount"`
}

type rawComment struct {
	ID        json.RawMessage `json:"id"`
	VideoID   json.RawMessage `json:"videoId"`
	UserID    json.RawMessage `json:"userId"`
	UserName  *string         `json:"userName"`
	Text      *string         `json:"text"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

type rawViews struct {
	VideoID      json.RawMessage `json:"videoId"`
	Title        *string         `json:"title"`
	ViewsCount   json.RawMessage `json:"viewsCount"`
	LastAccessed json.RawMessage `json:"lastAccessed"`
}

func decodeEnvelope(endpoint string, body []byte) (*envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Endpoint: endpoint, Reason: "body is not a JSON object"}
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "invalid JSON", Err: err}
	}
	return &env, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// normalizer turns raw API records into the canonical domain shapes.
type normalizer struct {
	mediaBase string
}

func (n normalizer) feed(endpoint string, env *envelope) (*video.Feed, error) {
	feed := &video.Feed{Videos: []video.Video{}}
	if env.CurrentPage != nil {
		feed.CurrentPage = *env.CurrentPage
	}
	if env.TotalItems != nil {
		feed.TotalItems = *env.TotalItems
	}
	if env.TotalPages != nil {
		feed.TotalPages = *env.TotalPages
	}
	if env.PageSize != nil {
		feed.PageSize = *env.PageSize
	}
	if isNull(env.Data) {
		return feed, nil
	}
	var raws []rawVideo
	if err := json.Unmarshal(env.Data, &raws); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "data is not a list of videos", Err: err}
	}
	for i, raw := range raws {
		v, err := n.video(raw)
		if err != nil {
			return nil, &ParseError{Endpoint: endpoint, Reason: fmt.Sprintf("item %d", i), Err: err}
		}
		feed.Videos = append(feed.Videos, *v)
	}
	return feed, nil
}

func (n normalizer) single(endpoint string, env *envelope) (*video.Video, error) {
	if isNull(env.Data) {
		return nil, &ParseError{Endpoint: endpoint, Reason: "missing data"}
	}
	var raw rawVideo
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "data is not a video", Err: err}
	}
	v, err := n.video(raw)
	if err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "invalid video", Err: err}
	}
	return v, nil
}

func (n normalizer) video(raw rawVideo) (*video.Video, error) {
	id := scalarString(raw.ID)
	if id == "" {
		return nil, errors.New("video has no id")
	}
	v := &video.Video{
		ID:            id,
		Title:         deref(raw.Title),
		Description:   deref(raw.VideoDescription),
		Tags:          parseTags(raw.Tags),
		ThumbnailURL:  fmt.Sprintf("%s/%s/thumbnail", n.mediaBase, id),
		VideoURL:      fmt.Sprintf("%s/%s/video", n.mediaBase, id),
		Location:      parseRawLocation(raw.Location),
		CreatedAt:     parseTime(raw.CreatedAt),
		UserID:        scalarString(raw.UserID),
		UserName:      deref(raw.UserName),
		Likes:         counter(raw.LikesCount),
		CommentsCount: counter(raw.CommentsCount),
		ViewsCount:    counter(raw.ViewsCount),
		IsLiked:       false,
	}
	if v.UserName == "" {
		v.UserName = video.AnonymousUserName
	}
	return v, nil
}

func (n normalizer) comment(raw rawComment, videoID string) video.Comment {
	c := video.Comment{
		ID:        scalarString(raw.ID),
		VideoID:   scalarString(raw.VideoID),
		UserID:    scalarString(raw.UserID),
		UserName:  deref(raw.UserName),
		Text:      deref(raw.Text),
		CreatedAt: parseTime(raw.CreatedAt),
	}
	if c.VideoID == "" {
		c.VideoID = videoID
	}
	if c.UserName == "" {
		c.UserName = video.AnonymousUserName
	}
	return c
}

func (n normalizer) comments(endpoint, videoID string, env *envelope) ([]video.Comment, error) {
	out := []video.Comment{}
	if isNull(env.Data) {
		return out, nil
	}
	var raws []rawComment
	if err := json.Unmarshal(env.Data, &raws); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "data is not a list of comments", Err: err}
	}
	for _, raw := range raws {
		out = append(out, n.comment(raw, videoID))
	}
	return out, nil
}

func (n normalizer) views(endpoint, videoID string, body []byte) (*video.ViewStats, error) {
	var raw rawViews
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "invalid JSON", Err: err}
	}
	stats := &video.ViewStats{
		VideoID:    scalarString(raw.VideoID),
		Title:      deref(raw.Title),
		ViewsCount: counter(raw.ViewsCount),
	}
	if stats.VideoID == "" {
		stats.VideoID = videoID
	}
	if t := parseTime(raw.LastAccessed); !t.IsZero() {
		stats.LastAccessed = &t
	}
	return stats, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// scalarString renders a JSON string or number as text. Numbers keep their
// literal form so 7 becomes "7".
func scalarString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	t := bytes.TrimSpace(raw)
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			return s
		}
		return ""
	}
	var num json.Number
	if err := json.Unmarshal(t, &num); err == nil {
		return num.String()
	}
	return ""
}

// counter returns a non-negative count; anything that is not a JSON number
// counts as zero.
func counter(raw json.RawMessage) int {
	if isNull(raw) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	if f < 0 {
		return 0
	}
	return int(f)
}

// parseTags accepts a list, a keyed mapping whose values are taken in the
// order they appear in the document, or nothing.
func parseTags(raw json.RawMessage) []string {
	tags := []string{}
	if isNull(raw) {
		return tags
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return tags
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tags
	}
	switch delim {
	case '[':
		for dec.More() {
			var v any
			if err := dec.Decode(&v); err != nil {
				return uniqueTags(tags)
			}
			if s, ok := tagValue(v); ok {
				tags = append(tags, s)
			}
		}
	case '{':
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return uniqueTags(tags)
			}
			var v any
			if err := dec.Decode(&v); err != nil {
				return uniqueTags(tags)
			}
			if s, ok := tagValue(v); ok {
				tags = append(tags, s)
			}
		}
	}
	return uniqueTags(tags)
}

func tagValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// uniqueTags drops exact duplicates and keeps first occurrences in place.
func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func parseRawLocation(raw json.RawMessage) *video.Location {
	if isNull(raw) {
		return nil
	}
	t := bytes.TrimSpace(raw)
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return nil
		}
		return video.ParseLocation(s)
	default:
		// objects arrive already structured; other scalars become an address
		return video.ParseLocation(string(t))
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts ISO strings with or without zone, epoch milliseconds and
// the [y,m,d,h,m,s,nanos] array some Java serializers emit. Unparseable values
// give the zero time.
func parseTime(raw json.RawMessage) time.Time {
	if isNull(raw) {
		return time.Time{}
	}
	t := bytes.TrimSpace(raw)
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return time.Time{}
		}
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC()
			}
		}
	case '[':
		var parts []int
		if err := json.Unmarshal(t, &parts); err != nil || len(parts) < 3 {
			return time.Time{}
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC)
	default:
		var ms int64
		if err := json.Unmarshal(t, &ms); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	}
	return time.Time{}
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
