package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khoahotran/jutjub/pkg/auth"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type RouterDeps struct {
	Videos   *VideoHandler
	Uploads  *UploadHandler
	Auth     *AuthHandler
	Decoder  *auth.TokenDecoder
	Gatherer prometheus.Gatherer
	Logger   logger.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), ErrorMiddleware(d.Logger))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	api.Use(SessionMiddleware(d.Decoder))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", d.Auth.Login)
			authGroup.POST("/register", d.Auth.Register)
			authGroup.GET("/activate", d.Auth.Activate)
		}

		videos := api.Group("/videos")
		{
			videos.GET("", d.Videos.ListVideos)
			videos.GET("/recent", d.Videos.ListRecent)
			videos.GET("/popular", d.Videos.ListPopular)
			videos.GET("/search", d.Videos.Search)
			videos.GET("/tag/:tag", d.Videos.ListByTag)
			videos.POST("/upload", d.Uploads.UploadVideo)
			videos.GET("/:id", d.Videos.GetVideo)
			videos.GET("/:id/views", d.Videos.GetViewStats)
			videos.GET("/:id/thumbnail", d.Videos.GetThumbnail)
			videos.POST("/:id/like", d.Videos.LikeVideo)
			videos.GET("/:id/comments", d.Videos.ListComments)
			videos.POST("/:id/comments", d.Videos.AddComment)
			videos.DELETE("/:id", d.Videos.DeleteVideo)
		}
	}
	return router
}
