package rest

import (
	"net/http"

	"github.com/dfryer1193/blogapi/api"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) getHTML(src HTMLSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HTMLContent{Path: src.Key(), HTML: src.Content()})
	}
}

func (h *Handlers) getItems(src ItemSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Items())
	}
}

func (h *Handlers) GetAppearances(c *gin.Context) {
	c.JSON(http.StatusOK, h.Appearances.List())
}

func (h *Handlers) GetPodcasts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Podcasts.List())
}

func (h *Handlers) GetSpringTips(c *gin.Context) {
	c.JSON(http.StatusOK, h.SpringTips.Episodes())
}

func (h *Handlers) GetLatestSpringTip(c *gin.Context) {
	latest, ok := h.SpringTips.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, api.Error{Error: "no Spring Tips episodes loaded"})
		return
	}
	c.JSON(http.StatusOK, latest)
}
