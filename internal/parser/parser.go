// Package parser turns downloaded history and insider-trades pages into typed
// rows. It performs no I/O of its own.
package parser

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"stocks/internal/models"
)

const (
	historyContainer = "div#quotes_content_left_pnlAJAX"
	tradesContainer  = "div.genTable"
	lastPageLink     = "#quotes_content_left_lb_LastPage"

	historyCells = 6
	tradeCells   = 8
)

// dateLayouts are tried in order when reading a date cell.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/06",
}

// HistoryRow is one trading day from the historical prices table.
type HistoryRow struct {
	Date   models.Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TradeRow is one line of the insider trades table, insider included.
type TradeRow struct {
	Insider         string
	Relation        string
	LastDate        models.Date
	TransactionType string
	OwnerType       models.OwnerType
	SharesTraded    int64
	LastPrice       *float64
	SharesHold      int64
}

// Parser extracts rows from source pages. Malformed rows are logged and
// skipped; a missing page element fails the whole page with *ParsingError.
type Parser struct {
	log *zap.SugaredLogger
}

// New creates a Parser that reports skipped rows to log.
func New(log *zap.SugaredLogger) *Parser {
	return &Parser{log: log}
}

// ParseHistory reads the historical prices page of ticker.
func (p *Parser) ParseHistory(ticker string, r io.Reader) ([]HistoryRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading history page: %w", err)
	}

	div, err := find(doc.Selection, historyContainer)
	if err != nil {
		return nil, err
	}
	table, err := find(div, "table")
	if err != nil {
		return nil, err
	}
	tbody, err := find(table, "tbody")
	if err != nil {
		return nil, err
	}

	var result []HistoryRow
	for _, cells := range tableRows(tbody) {
		if len(cells) == 0 {
			continue
		}
		if len(cells) != historyCells {
			p.log.Warnw("unexpected table row size",
				"ticker", ticker, "expected", historyCells, "actual", len(cells), "row", cells)
			continue
		}

		row, err := historyRow(cells)
		if err != nil {
			p.log.Warnw("unexpected data format", "ticker", ticker, "row", cells, "error", err)
			continue
		}
		result = append(result, row)
	}

	return result, nil
}

// ParseTrades reads one page of the insider trades table of ticker. A page
// number past the last available page yields no rows and no error.
func (p *Parser) ParseTrades(ticker string, page int, r io.Reader) ([]TradeRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading trades page: %w", err)
	}

	if page > pageCount(doc) {
		return nil, nil
	}

	div, err := find(doc.Selection, tradesContainer)
	if err != nil {
		return nil, err
	}
	table, err := find(div, "table")
	if err != nil {
		return nil, err
	}

	var result []TradeRow
	for _, cells := range tableRows(table) {
		if len(cells) == 0 {
			continue
		}
		if len(cells) != tradeCells {
			p.log.Warnw("unexpected table row size",
				"ticker", ticker, "page", page, "expected", tradeCells, "actual", len(cells), "row", cells)
			continue
		}

		row, err := tradeRow(cells)
		if err != nil {
			p.log.Warnw("unexpected data format", "ticker", ticker, "page", page, "row", cells, "error", err)
			continue
		}
		result = append(result, row)
	}

	return result, nil
}

// PageCount returns the number of insider trade pages advertised by the
// page's "last page" link, or 1 when there is no usable link.
func PageCount(r io.Reader) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("reading page: %w", err)
	}
	return pageCount(doc), nil
}

func pageCount(doc *goquery.Document) int {
	href, ok := doc.Find(lastPageLink).First().Attr("href")
	if !ok {
		return 1
	}
	u, err := url.Parse(href)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// find returns the first match of selector under s.
func find(s *goquery.Selection, selector string) (*goquery.Selection, error) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return nil, &ParsingError{Selector: selector}
	}
	return found, nil
}

// tableRows returns the trimmed td texts of every row belonging to table
// itself, ignoring rows of nested tables.
func tableRows(table *goquery.Selection) [][]string {
	owner := table
	if !table.Is("table") {
		owner = table.Closest("table")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(owner) {
			return
		}
		var cells []string
		tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		rows = append(rows, cells)
	})
	return rows
}

func historyRow(cells []string) (HistoryRow, error) {
	date, err := parseDate(cells[0])
	if err != nil {
		return HistoryRow{}, err
	}

	var nums [5]float64
	for i := range nums {
		if nums[i], err = parseNumber(cells[i+1]); err != nil {
			return HistoryRow{}, err
		}
	}

	return HistoryRow{
		Date:   date,
		Open:   nums[0],
		High:   nums[1],
		Low:    nums[2],
		Close:  nums[3],
		Volume: nums[4],
	}, nil
}

func tradeRow(cells []string) (TradeRow, error) {
	date, err := parseDate(cells[2])
	if err != nil {
		return TradeRow{}, err
	}
	ownerType, err := models.ParseOwnerType(cells[4])
	if err != nil {
		return TradeRow{}, rowErrorf("%v", err)
	}
	traded, err := parseShares(cells[5])
	if err != nil {
		return TradeRow{}, err
	}

	var lastPrice *float64
	if cells[6] != "" {
		price, err := parseNumber(cells[6])
		if err != nil {
			return TradeRow{}, err
		}
		lastPrice = &price
	}

	hold, err := parseShares(cells[7])
	if err != nil {
		return TradeRow{}, err
	}

	return TradeRow{
		Insider:         cells[0],
		Relation:        cells[1],
		LastDate:        date,
		TransactionType: cells[3],
		OwnerType:       ownerType,
		SharesTraded:    traded,
		LastPrice:       lastPrice,
		SharesHold:      hold,
	}, nil
}

func parseDate(s string) (models.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t), nil
		}
	}
	return models.Date{}, rowErrorf("invalid date %q", s)
}

// parseNumber strips thousands separators before converting.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, rowErrorf("invalid number %q", s)
	}
	return v, nil
}

func parseShares(s string) (int64, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(v)), nil
}
