package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaennil/tileview/internal/viewlog"
	"github.com/jaennil/tileview/pkg/logger"
)

type viewRequest struct {
	Row     int  `json:"row" validate:"gte=0"`
	Col     int  `json:"col" validate:"gte=0"`
	Preview bool `json:"preview"`
}

func (h *Handler) RecordView(c *gin.Context) {
	log, _ := c.Get("logger")
	l := log.(logger.Logger)

	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to decode request body",
		})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.views.Append(viewlog.Event{Row: req.Row, Col: req.Col, Preview: req.Preview}); err != nil {
		l.Error("failed to append view event", "error", err)
		h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "view recorded", nil)
}
