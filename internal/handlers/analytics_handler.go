package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "stocks/internal/errors"
	"stocks/internal/models"
	"stocks/internal/services"
)

// AnalyticsHandler serves price-difference analytics and their forms.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	stockService     services.StockServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer, stockService services.StockServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, stockService: stockService}
}

// AnalyticsQuery selects the date range of an analytics request.
type AnalyticsQuery struct {
	DateFrom string `form:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"required,datetime=2006-01-02"`
}

// DeltaQuery selects the minimum price move and price type of a delta request.
type DeltaQuery struct {
	Value *float64 `form:"value" binding:"required,gte=0"`
	Type  string   `form:"type" binding:"required,price_type"`
}

// AnalyticsForm is posted by the analytics form page.
type AnalyticsForm struct {
	Ticker   string `form:"ticker" binding:"required,ticker"`
	DateFrom string `form:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"required,datetime=2006-01-02"`
}

// DeltaForm is posted by the delta form page. Value stays a string so an
// invalid entry can be shown back to the user.
type DeltaForm struct {
	Ticker string `form:"ticker" binding:"required,ticker"`
	Value  string `form:"value" binding:"required,numeric"`
	Type   string `form:"type" binding:"required,price_type"`
}

// Analytics lists the price differences between every pair of trading days
// in a date range.
// @Summary     Price differences over a date range
// @Description For every price type, the difference between every pair of trading days within the range
// @Tags        analytics
// @Produce     json
// @Param       ticker    path  string true "Ticker"
// @Param       date_from query string true "Start date (YYYY-MM-DD)"
// @Param       date_to   query string true "End date (YYYY-MM-DD)"
// @Success     200 {array}  services.PriceDiff
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /{ticker}/analytics [get]
func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	ticker := services.NormalizeTicker(c.Param("ticker"))

	var q AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	// Both dates passed the datetime validator.
	from, _ := models.ParseDate(q.DateFrom)
	to, _ := models.ParseDate(q.DateTo)

	diffs, err := h.analyticsService.Analytics(c.Request.Context(), ticker, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	render(c, "analytics.html", diffs, gin.H{
		"Title": ticker + " analytics",
		"From":  from,
		"To":    to,
		"Diffs": diffs,
	})
}

// Delta lists the shortest periods in which a price moved by at least value.
// @Summary     Shortest price moves
// @Description Pairs of trading days whose price difference is at least value, keeping only the pairs with the fewest days between them
// @Tags        analytics
// @Produce     json
// @Param       ticker path  string true "Ticker"
// @Param       value  query number true "Minimum price difference"
// @Param       type   query string true "Price type" Enums(open, close, low, high)
// @Success     200 {array}  services.PriceDiff
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /{ticker}/delta [get]
func (h *AnalyticsHandler) Delta(c *gin.Context) {
	ticker := services.NormalizeTicker(c.Param("ticker"))

	var q DeltaQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	priceType, _ := models.ParsePriceType(q.Type)

	diffs, err := h.analyticsService.Delta(c.Request.Context(), ticker, *q.Value, priceType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	render(c, "delta.html", diffs, gin.H{
		"Title":     ticker + " delta",
		"Value":     *q.Value,
		"PriceType": priceType,
		"Diffs":     diffs,
	})
}

// ShowAnalyticsForm renders the empty analytics form.
func (h *AnalyticsHandler) ShowAnalyticsForm(c *gin.Context) {
	h.analyticsForm(c, AnalyticsForm{}, nil)
}

// SubmitAnalyticsForm validates the analytics form and redirects to the
// matching analytics page, or renders the form again with its errors.
func (h *AnalyticsHandler) SubmitAnalyticsForm(c *gin.Context) {
	var form AnalyticsForm
	if err := c.ShouldBind(&form); err != nil {
		h.analyticsForm(c, form, formErrors(err))
		return
	}

	from, _ := models.ParseDate(form.DateFrom)
	to, _ := models.ParseDate(form.DateTo)
	if from.After(to.Time) {
		h.analyticsForm(c, form, []string{"date_from must not be after date_to"})
		return
	}

	ticker, errs := h.knownTicker(form.Ticker)
	if errs != nil {
		h.analyticsForm(c, form, errs)
		return
	}

	q := url.Values{"date_from": {form.DateFrom}, "date_to": {form.DateTo}}
	c.Redirect(http.StatusFound, "/"+url.PathEscape(ticker)+"/analytics?"+q.Encode())
}

// ShowDeltaForm renders the empty delta form.
func (h *AnalyticsHandler) ShowDeltaForm(c *gin.Context) {
	h.deltaForm(c, DeltaForm{}, nil)
}

// SubmitDeltaForm validates the delta form and redirects to the matching
// delta page, or renders the form again with its errors.
func (h *AnalyticsHandler) SubmitDeltaForm(c *gin.Context) {
	var form DeltaForm
	if err := c.ShouldBind(&form); err != nil {
		h.deltaForm(c, form, formErrors(err))
		return
	}

	value, err := strconv.ParseFloat(form.Value, 64)
	if err != nil || value < 0 {
		h.deltaForm(c, form, []string{"value must be a non-negative number"})
		return
	}

	ticker, errs := h.knownTicker(form.Ticker)
	if errs != nil {
		h.deltaForm(c, form, errs)
		return
	}

	q := url.Values{"value": {form.Value}, "type": {form.Type}}
	c.Redirect(http.StatusFound, "/"+url.PathEscape(ticker)+"/delta?"+q.Encode())
}

// knownTicker normalizes ticker and checks that it has been fetched.
func (h *AnalyticsHandler) knownTicker(ticker string) (string, []string) {
	stock, err := h.stockService.GetStock(ticker)
	if err != nil {
		if errors.Is(err, apperrors.ErrStockNotFound) {
			return "", []string{"Unknown ticker " + services.NormalizeTicker(ticker)}
		}
		return "", []string{apperrors.ErrInternalServer.Message}
	}
	return stock.Ticker, nil
}

func (h *AnalyticsHandler) analyticsForm(c *gin.Context, form AnalyticsForm, errs []string) {
	c.HTML(http.StatusOK, "analytics_form.html", gin.H{
		"Title":  "Analytics",
		"Form":   form,
		"Errors": errs,
	})
}

func (h *AnalyticsHandler) deltaForm(c *gin.Context, form DeltaForm, errs []string) {
	c.HTML(http.StatusOK, "delta_form.html", gin.H{
		"Title":      "Delta",
		"Form":       form,
		"Errors":     errs,
		"PriceTypes": models.PriceTypes,
	})
}
