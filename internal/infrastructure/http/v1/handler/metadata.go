package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaennil/tileview/pkg/logger"
)

func (h *Handler) Metadata(c *gin.Context) {
	log, _ := c.Get("logger")
	l := log.(logger.Logger)

	summary, err := h.tileUseCase.MetadataSummary()
	if err != nil {
		l.Error("failed to get metadata summary", "error", err)
		h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "got metadata", summary)
}
