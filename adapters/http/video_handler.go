package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	feedUC "github.com/khoahotran/jutjub/internal/application/usecase/feed"
	interactionUC "github.com/khoahotran/jutjub/internal/application/usecase/interaction"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type VideoHandler struct {
	listVideosUC   *feedUC.ListVideosUseCase
	getVideoUC     *feedUC.GetVideoUseCase
	discoverUC     *feedUC.DiscoverVideosUseCase
	viewStatsUC    *feedUC.GetViewStatsUseCase
	thumbnailUC    *feedUC.GetThumbnailUseCase
	toggleLikeUC   *interactionUC.ToggleLikeUseCase
	listCommentsUC *interactionUC.ListCommentsUseCase
	addCommentUC   *interactionUC.AddCommentUseCase
	deleteVideoUC  *interactionUC.DeleteVideoUseCase
	logger         logger.Logger
}

type VideoUseCases struct {
	List         *feedUC.ListVideosUseCase
	Get          *feedUC.GetVideoUseCase
	Discover     *feedUC.DiscoverVideosUseCase
	ViewStats    *feedUC.GetViewStatsUseCase
	Thumbnail    *feedUC.GetThumbnailUseCase
	ToggleLike   *interactionUC.ToggleLikeUseCase
	ListComments *interactionUC.ListCommentsUseCase
	AddComment   *interactionUC.AddCommentUseCase
	Delete       *interactionUC.DeleteVideoUseCase
}

func NewVideoHandler(uc VideoUseCases, log logger.Logger) *VideoHandler {
	return &VideoHandler{
		listVideosUC:   uc.List,
		getVideoUC:     uc.Get,
		discoverUC:     uc.Discover,
		viewStatsUC:    uc.ViewStats,
		thumbnailUC:    uc.Thumbnail,
		toggleLikeUC:   uc.ToggleLike,
		listCommentsUC: uc.ListComments,
		addCommentUC:   uc.AddComment,
		deleteVideoUC:  uc.Delete,
		logger:         log,
	}
}

func pageFromQuery(c *gin.Context) (video.Page, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		return video.Page{}, apperror.NewInvalidInput("'page' must be a number", err)
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		return video.Page{}, apperror.NewInvalidInput("'size' must be a number", err)
	}
	return video.Page{
		Page:    page,
		Size:    size,
		SortBy:  c.Query("sortBy"),
		SortDir: video.SortDir(c.Query("sortDir")),
	}, nil
}

func (h *VideoHandler) ListVideos(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	out, err := h.listVideosUC.Execute(c.Request.Context(), feedUC.ListVideosInput{Page: page})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToFeedDTO(out.Feed))
}

func (h *VideoHandler) discover(c *gin.Context, mode feedUC.DiscoverMode, term string) {
	page, err := pageFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	out, err := h.discoverUC.Execute(c.Request.Context(), feedUC.DiscoverVideosInput{Mode: mode, Term: term, Page: page})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToFeedDTO(out.Feed))
}

func (h *VideoHandler) ListRecent(c *gin.Context) {
	h.discover(c, feedUC.ModeRecent, "")
}

func (h *VideoHandler) ListPopular(c *gin.Context) {
	h.discover(c, feedUC.ModePopular, "")
}

func (h *VideoHandler) Search(c *gin.Context) {
	h.discover(c, feedUC.ModeSearch, c.Query("keyword"))
}

func (h *VideoHandler) ListByTag(c *gin.Context) {
	h.discover(c, feedUC.ModeTag, c.Param("tag"))
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	withComments := c.Query("comments") == "true"
	out, err := h.getVideoUC.Execute(c.Request.Context(), feedUC.GetVideoInput{VideoID: c.Param("id"), WithComments: withComments})
	if err != nil {
		c.Error(err)
		return
	}
	resp := gin.H{"data": ToVideoDTO(out.Video)}
	if withComments {
		resp["comments"] = ToCommentDTOs(out.Comments)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VideoHandler) GetViewStats(c *gin.Context) {
	stats, err := h.viewStatsUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToViewStatsDTO(stats))
}

func (h *VideoHandler) GetThumbnail(c *gin.Context) {
	out, err := h.thumbnailUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	cacheState := "MISS"
	if out.FromCache {
		cacheState = "HIT"
	}
	c.Header("X-Cache", cacheState)
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, out.Thumbnail.ContentType, out.Thumbnail.Data)
}

func (h *VideoHandler) LikeVideo(c *gin.Context) {
	err := h.toggleLikeUC.Execute(c.Request.Context(), interactionUC.ToggleLikeInput{VideoID: c.Param("id")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video liked"})
}

func (h *VideoHandler) ListComments(c *gin.Context) {
	comments, err := h.listCommentsUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ToCommentDTOs(comments)})
}

func (h *VideoHandler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'text' is required", err))
		return
	}
	comment, err := h.addCommentUC.Execute(c.Request.Context(), interactionUC.AddCommentInput{VideoID: c.Param("id"), Text: req.Text})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": ToCommentDTO(comment)})
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	if err := h.deleteVideoUC.Execute(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
