package http

import (
	"errors"
	"net/http"

	"streamgauge/internal/core/domain"
	"streamgauge/internal/core/ports"
	apperrors "streamgauge/pkg/errors"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	repo ports.SummaryRepository
}

func NewResultsHandler(repo ports.SummaryRepository) *ResultsHandler {
	return &ResultsHandler{repo: repo}
}

func (h *ResultsHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/results", h.ListResults)
		api.GET("/results/:id", h.GetResult)
	}
}

// ListResults returns every stored source summary in measurement order.
func (h *ResultsHandler) ListResults(c *gin.Context) {
	summaries, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal,
			"failed to list results", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(summaries),
		"results": summaries,
	})
}

func (h *ResultsHandler) GetResult(c *gin.Context) {
	id := c.Param("id")

	summary, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSummaryNotFound) {
			c.Error(apperrors.NewNotFoundError("result").WithContext("id", id))
			return
		}
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal,
			"failed to load result", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": summary,
	})
}
