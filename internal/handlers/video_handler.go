package handlers

import (
	"net/http"

	"github.com/anonto42/reelnote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// VideoHandler serves video metadata for notification rendering
type VideoHandler struct {
	videoRepository repositories.VideoRepository
}

func NewVideoHandler(videoRepo repositories.VideoRepository) *VideoHandler {
	return &VideoHandler{videoRepository: videoRepo}
}

func (h *VideoHandler) RegisterVideoRoutes(g *echo.Group) {
	g.GET("/videos/:id", h.GetVideo)
}

// GetVideo returns {id, title, url}
func (h *VideoHandler) GetVideo(c echo.Context) error {
	video, err := h.videoRepository.GetVideoByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err, "Video")
	}
	return c.JSON(http.StatusOK, video.Meta())
}
