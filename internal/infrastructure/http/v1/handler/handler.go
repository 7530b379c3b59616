package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jaennil/tileview/internal/usecase"
	"github.com/jaennil/tileview/internal/viewlog"
)

const (
	internalServerErrorText = "the server encountered an error and could not process your request"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	validate    *validator.Validate
	tileUseCase *usecase.TileUseCase
	views       *viewlog.Log
}

func NewHandler(v *validator.Validate, uc *usecase.TileUseCase, views *viewlog.Log) *Handler {
	return &Handler{
		validate:    v,
		tileUseCase: uc,
		views:       views,
	}
}

func (h *Handler) RespondWithJSON(c *gin.Context, code int, message string, data any) {
	success := code < 400

	r := response{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, r)
}
