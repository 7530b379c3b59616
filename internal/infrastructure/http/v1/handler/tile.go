package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaennil/tileview/internal/tilefile"
	"github.com/jaennil/tileview/pkg/logger"
)

func (h *Handler) Tile(c *gin.Context) {
	h.serveTile(c, c.Query("preview") == "1")
}

func (h *Handler) Preview(c *gin.Context) {
	h.serveTile(c, true)
}

func (h *Handler) serveTile(c *gin.Context, preview bool) {
	log, _ := c.Get("logger")
	l := log.(logger.Logger)

	strRow := c.Param("row")
	strCol := c.Param("col")

	row, err := strconv.Atoi(strRow)
	if err != nil {
		l.Warn("invalid row parameter", "row", strRow, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "row should be integer",
		})
		return
	}

	col, err := strconv.Atoi(strCol)
	if err != nil {
		l.Warn("invalid col parameter", "col", strCol, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "col should be integer",
		})
		return
	}

	data, ext, ok, err := h.tileUseCase.LookupTile(row, col, preview)
	if err != nil {
		l.Error("failed to get tile", "row", row, "col", col, "preview", preview, "error", err)
		h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "tile not found",
		})
		return
	}

	c.Data(http.StatusOK, tilefile.ContentType(ext), data)
}
