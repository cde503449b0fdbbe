package http

import (
	"time"

	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
)

// Video DTOs use the field names the browser views bind to.
type LocationDTO struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
}

type VideoDTO struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Tags         []string     `json:"tags"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	VideoURL     string       `json:"videoUrl"`
	Location     *LocationDTO `json:"location"`
	CreatedAt    *time.Time   `json:"createdAt"`
	UserID       string       `json:"userId"`
	UserName     string       `json:"userName"`
	Likes        int          `json:"likes"`
	Comments     int          `json:"comments"`
	Views        int          `json:"views"`
	IsLiked      bool         `json:"isLiked"`
}

func ToVideoDTO(v *video.Video) VideoDTO {
	dto := VideoDTO{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Tags:         v.Tags,
		ThumbnailURL: v.ThumbnailURL,
		VideoURL:     v.VideoURL,
		UserID:       v.UserID,
		UserName:     v.UserName,
		Likes:        v.Likes,
		Comments:     v.CommentsCount,
		Views:        v.ViewsCount,
		IsLiked:      v.IsLiked,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if v.Location.Kind() != video.LocationAbsent {
		dto.Location = &LocationDTO{
			Latitude:  v.Location.Latitude,
			Longitude: v.Location.Longitude,
			Address:   v.Location.Address,
		}
	}
	if !v.CreatedAt.IsZero() {
		t := v.CreatedAt
		dto.CreatedAt = &t
	}
	return dto
}

type FeedDTO struct {
	Data        []VideoDTO `json:"data"`
	CurrentPage int        `json:"currentPage"`
	TotalItems  int64      `json:"totalItems"`
	TotalPages  int        `json:"totalPages"`
	PageSize    int        `json:"pageSize"`
}

func ToFeedDTO(f *video.Feed) FeedDTO {
	dto := FeedDTO{
		Data:        make([]VideoDTO, 0, len(f.Videos)),
		CurrentPage: f.CurrentPage,
		TotalItems:  f.TotalItems,
		TotalPages:  f.TotalPages,
		PageSize:    f.PageSize,
	}
	for i := range f.Videos {
		dto.Data = append(dto.Data, ToVideoDTO(&f.Videos[i]))
	}
	return dto
}

type CommentDTO struct {
	ID        string     `json:"id"`
	VideoID   string     `json:"videoId"`
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"createdAt"`
}

func ToCommentDTO(c *video.Comment) CommentDTO {
	dto := CommentDTO{
		ID:       c.ID,
		VideoID:  c.VideoID,
		UserID:   c.UserID,
		UserName: c.UserName,
		Text:     c.Text,
	}
	if !c.CreatedAt.IsZero() {
		t := c.CreatedAt
		dto.CreatedAt = &t
	}
	return dto
}

func ToCommentDTOs(cs []video.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(cs))
	for i := range cs {
		out = append(out, ToCommentDTO(&cs[i]))
	}
	return out
}

type ViewStatsDTO struct {
	VideoID      string     `json:"videoId"`
	Title        string     `json:"title"`
	ViewsCount   int        `json:"viewsCount"`
	LastAccessed *time.Time `json:"lastAccessed"`
}

func ToViewStatsDTO(s *video.ViewStats) ViewStatsDTO {
	return ViewStatsDTO{VideoID: s.VideoID, Title: s.Title, ViewsCount: s.ViewsCount, LastAccessed: s.LastAccessed}
}

type ProgressDTO struct {
	UploadID   string `json:"uploadId"`
	Percentage int    `json:"percentage"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

func ToProgressDTO(id string, p upload.Progress) ProgressDTO {
	return ProgressDTO{UploadID: id, Percentage: p.Percentage, Status: string(p.Status), Message: p.Message}
}

// uploadMetadata is the JSON carried in the videoPost form field.
type uploadMetadata struct {
	Title            string   `json:"title"`
	VideoDescription string   `json:"videoDescription"`
	Tags             []string `json:"tags"`
	Location         *string  `json:"location"`
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
	Password        string `json:"password" binding:"required"`
}
