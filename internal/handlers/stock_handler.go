package handlers

import (
	"github.com/gin-gonic/gin"

	"stocks/internal/services"
)

// StockHandler serves scraped stocks, their price history and insider trades.
type StockHandler struct {
	stockService services.StockServicer
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// ListStocks lists every fetched stock.
// @Summary     List stocks
// @Description List the stocks that have been fetched, ordered by ticker
// @Tags        stocks
// @Produce     json
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Stock]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      / [get]
func (h *StockHandler) ListStocks(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.stockService.ListStocks(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	render(c, "stocks.html", result, gin.H{"Title": "Stocks", "Page": result})
}

// GetQuotes lists the price history of a stock.
// @Summary     Price history
// @Description List the daily quotes of a stock, newest first
// @Tags        stocks
// @Produce     json
// @Param       ticker    path  string true  "Ticker"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Quote]
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /{ticker} [get]
func (h *StockHandler) GetQuotes(c *gin.Context) {
	ticker := services.NormalizeTicker(c.Param("ticker"))
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.stockService.ListQuotes(ticker, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	render(c, "quotes.html", result, gin.H{
		"Title":  ticker + " price history",
		"Ticker": ticker,
		"Page":   result,
	})
}

// ListTrades lists the insider trades of a stock.
// @Summary     Insider trades
// @Description List the insider trades of a stock, newest first
// @Tags        stocks
// @Produce     json
// @Param       ticker    path  string true  "Ticker"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Trade]
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /{ticker}/insider [get]
func (h *StockHandler) ListTrades(c *gin.Context) {
	ticker := services.NormalizeTicker(c.Param("ticker"))
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.stockService.ListTrades(ticker, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	render(c, "trades.html", result, gin.H{
		"Title":  ticker + " insider trades",
		"Ticker": ticker,
		"Page":   result,
	})
}

// ListInsiderTrades lists the trades of one insider in a stock.
// @Summary     Trades of an insider
// @Description List the trades an insider made in a stock, newest first
// @Tags        stocks
// @Produce     json
// @Param       ticker    path  string true  "Ticker"
// @Param       name      path  string true  "Insider name"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Trade]
// @Failure     404 {object} ErrorResponse "Stock or insider not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /{ticker}/insider/{name} [get]
func (h *StockHandler) ListInsiderTrades(c *gin.Context) {
	ticker := services.NormalizeTicker(c.Param("ticker"))
	name := c.Param("name")
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.stockService.ListInsiderTrades(ticker, name, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	render(c, "trades.html", result, gin.H{
		"Title":  ticker + " trades by " + name,
		"Ticker": ticker,
		"Page":   result,
	})
}
