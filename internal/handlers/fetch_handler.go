package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stocks/internal/errors"
	"stocks/internal/fetcher"
	"stocks/internal/services"
)

// FetchHandler starts scrape runs and reports on them.
type FetchHandler struct {
	fetchService services.FetchServicer
}

// NewFetchHandler creates a new FetchHandler.
func NewFetchHandler(fetchService services.FetchServicer) *FetchHandler {
	return &FetchHandler{fetchService: fetchService}
}

// StartFetchRequest represents the request payload for starting a fetch run.
type StartFetchRequest struct {
	Tickers []string `json:"tickers" binding:"required,min=1,dive,ticker"`
}

// StartFetchResponse identifies the started run.
type StartFetchResponse struct {
	RunID string `json:"run_id"`
}

// FetchStatusResponse reports whether a run is active and how the last one ended.
type FetchStatusResponse struct {
	Running bool               `json:"running"`
	LastRun *fetcher.RunResult `json:"last_run"`
}

// StartFetch starts a background fetch run.
// @Summary     Start fetch run
// @Description Scrape price history and insider trades for the given tickers in the background (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body StartFetchRequest true "Tickers to fetch"
// @Success     202 {object} StartFetchResponse "Run started"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Run already in progress"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /fetch [post]
func (h *FetchHandler) StartFetch(c *gin.Context) {
	var req StartFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	runID, err := h.fetchService.Start(req.Tickers)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, StartFetchResponse{RunID: runID})
}

// FetchStatus reports on fetch runs.
// @Summary     Fetch run status
// @Description Whether a run is in progress and the result of the last finished run (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} FetchStatusResponse
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /fetch [get]
func (h *FetchHandler) FetchStatus(c *gin.Context) {
	c.JSON(http.StatusOK, FetchStatusResponse{
		Running: h.fetchService.Running(),
		LastRun: h.fetchService.LastRun(),
	})
}
