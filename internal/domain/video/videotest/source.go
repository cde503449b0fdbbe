// Package videotest provides an in-memory video.Source for tests.
package videotest

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

type Source struct {
	mu       sync.Mutex
	videos   []video.Video
	comments map[string][]video.Comment
	views    map[string]int
	thumbs   map[string][]byte
	calls    map[string]int

	// Err, when set, is returned by every call.
	Err error
	// Delay is slept before answering Get.
	Delay time.Duration
}

func NewSource(videos ...video.Video) *Source {
	return &Source{
		videos:   videos,
		comments: map[string][]video.Comment{},
		views:    map[string]int{},
		thumbs:   map[string][]byte{},
		calls:    map[string]int{},
	}
}

func (s *Source) SetThumbnail(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbs[id] = data
}

// Calls returns how often method was invoked.
func (s *Source) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Source) enter(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	return s.Err
}

func (s *Source) find(id string) (int, bool) {
	for i, v := range s.videos {
		if v.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Source) page(match func(video.Video) bool, p video.Page) *video.Feed {
	p = p.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []video.Video
	for _, v := range s.videos {
		if match(v) {
			all = append(all, v)
		}
	}
	feed := &video.Feed{Videos: []video.Video{}, CurrentPage: p.Page, PageSize: p.Size, TotalItems: int64(len(all))}
	feed.TotalPages = (len(all) + p.Size - 1) / p.Size
	start := min(p.Page*p.Size, len(all))
	end := min(start+p.Size, len(all))
	feed.Videos = append(feed.Videos, all[start:end]...)
	return feed
}

func all(video.Video) bool { return true }

func (s *Source) List(ctx context.Context, p video.Page) (*video.Feed, error) {
	if err := s.enter("List"); err != nil {
		return nil, err
	}
	return s.page(all, p), nil
}

func (s *Source) Recent(ctx context.Context, p video.Page) (*video.Feed, error) {
	if err := s.enter("Recent"); err != nil {
		return nil, err
	}
	return s.page(all, p), nil
}

func (s *Source) Popular(ctx context.Context, p video.Page) (*video.Feed, error) {
	if err := s.enter("Popular"); err != nil {
		return nil, err
	}
	return s.page(func(v video.Video) bool { return v.Likes > 0 }, p), nil
}

func (s *Source) Search(ctx context.Context, keyword string, p video.Page) (*video.Feed, error) {
	if err := s.enter("Search"); err != nil {
		return nil, err
	}
	return s.page(func(v video.Video) bool { return v.Title == keyword }, p), nil
}

func (s *Source) ByTag(ctx context.Context, tag string, p video.Page) (*video.Feed, error) {
	if err := s.enter("ByTag"); err != nil {
		return nil, err
	}
	return s.page(func(v video.Video) bool {
		for _, t := range v.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}, p), nil
}

// Get counts as one view, like the real endpoint.
func (s *Source) Get(ctx context.Context, id string) (*video.Video, error) {
	if err := s.enter("Get"); err != nil {
		return nil, err
	}
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, apperror.NewUnavailable("request timed out", ctx.Err())
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(id)
	if !ok {
		return nil, apperror.NewUpstream(404, "Video post not found")
	}
	s.views[id]++
	v := s.videos[i]
	v.ViewsCount = s.views[id]
	return &v, nil
}

func (s *Source) Views(ctx context.Context, id string) (*video.ViewStats, error) {
	if err := s.enter("Views"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(id)
	if !ok {
		return nil, apperror.NewUpstream(404, "Video post not found")
	}
	return &video.ViewStats{VideoID: id, Title: s.videos[i].Title, ViewsCount: s.views[id]}, nil
}

func (s *Source) Thumbnail(ctx context.Context, id string) ([]byte, string, error) {
	if err := s.enter("Thumbnail"); err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.thumbs[id]
	if !ok {
		return nil, "", apperror.NewUpstream(404, "Thumbnail not found")
	}
	return data, "image/png", nil
}

func (s *Source) Like(ctx context.Context, id string) error {
	if err := s.enter("Like"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(id)
	if !ok {
		return apperror.NewUpstream(404, "Video post not found")
	}
	s.videos[i].Likes++
	return nil
}

func (s *Source) Comments(ctx context.Context, id string) ([]video.Comment, error) {
	if err := s.enter("Comments"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]video.Comment{}, s.comments[id]...), nil
}

func (s *Source) AddComment(ctx context.Context, id, text string) (*video.Comment, error) {
	if err := s.enter("AddComment"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := video.Comment{
		ID:        strconv.Itoa(len(s.comments[id]) + 1),
		VideoID:   id,
		UserName:  video.AnonymousUserName,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[id] = append(s.comments[id], c)
	return &c, nil
}

func (s *Source) Delete(ctx context.Context, id string) error {
	if err := s.enter("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(id)
	if !ok {
		return apperror.NewUpstream(404, "Video post not found")
	}
	s.videos = append(s.videos[:i], s.videos[i+1:]...)
	return nil
}

var _ video.Source = (*Source)(nil)
