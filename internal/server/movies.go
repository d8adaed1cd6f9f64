package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

type movieHandler struct {
	catalog catalog.Catalog
	log     *slog.Logger
}

// Details handles GET /v1/movies/:id
func (h *movieHandler) Details(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid movie id"})
		return
	}

	details, err := h.catalog.Details(c.Request.Context(), id)
	if err != nil {
		var apiErr *catalog.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, errorResponse{Error: "movie not found"})
			return
		}
		h.log.Error("movie details failed", "movie_id", id, "error", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, details)
}
