package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dfryer1193/blogapi/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultPageSize = 10

func (h *Handlers) GetRecentPosts(c *gin.Context) {
	offset, pageSize, err := paging(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.NewPage(h.Posts.Recent(offset, pageSize)))
}

func (h *Handlers) SearchPosts(c *gin.Context) {
	offset, pageSize, err := paging(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	page, err := h.Posts.Search(c.Request.Context(), c.Query("q"), offset, pageSize)
	if err != nil {
		log.Error().Err(err).Str("query", c.Query("q")).Msg("Search failed")
		c.JSON(http.StatusInternalServerError, api.Error{Error: "search failed"})
		return
	}

	c.JSON(http.StatusOK, api.NewPage(page))
}

func (h *Handlers) GetPostByPath(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, api.Error{Error: "path is required"})
		return
	}

	post, ok := h.Posts.GetByPath(path)
	if !ok {
		c.JSON(http.StatusNotFound, api.Error{Error: "no post at " + path})
		return
	}

	c.JSON(http.StatusOK, api.NewPost(post))
}

func paging(c *gin.Context) (offset, pageSize int, err error) {
	offset, err = intQuery(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = intQuery(c, "pageSize", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return offset, pageSize, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
