package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stocks/internal/models"
)

func newTestParser() (*Parser, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return New(zap.New(core).Sugar()), logs
}

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to open fixture %s: %v", name, err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestParseHistory(t *testing.T) {
	p, logs := newTestParser()

	rows, err := p.ParseHistory("AAPL", openFixture(t, "history.html"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(rows), rows)
	}

	first := rows[0]
	if first.Date.String() != "2024-03-05" {
		t.Errorf("expected date 2024-03-05, got %s", first.Date)
	}
	if first.Open != 170.76 || first.High != 172.04 || first.Low != 169.62 || first.Close != 170.12 {
		t.Errorf("unexpected prices: %+v", first)
	}
	if first.Volume != 95132355 {
		t.Errorf("expected volume 95132355, got %v", first.Volume)
	}

	if rows[2].Open != 1182.10 {
		t.Errorf("expected thousands separator stripped, got %v", rows[2].Open)
	}

	// One short row and one non-numeric row.
	if n := logs.Len(); n != 2 {
		t.Errorf("expected 2 warnings, got %d", n)
	}
}

func TestParseHistory_NumericCells(t *testing.T) {
	tests := []struct {
		cell string
		want float64
	}{
		{cell: "0", want: 0},
		{cell: "12.5", want: 12.5},
		{cell: "1,234", want: 1234},
		{cell: "1,234,567.891", want: 1234567.891},
		{cell: "0.0001", want: 0.0001},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			p, _ := newTestParser()
			page := historyPage([]string{"01/02/2024", tt.cell, tt.cell, tt.cell, tt.cell, tt.cell})

			rows, err := p.ParseHistory("T", strings.NewReader(page))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}
			r := rows[0]
			for _, got := range []float64{r.Open, r.High, r.Low, r.Close, r.Volume} {
				if got != tt.want {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestParseHistory_WrongCellCount(t *testing.T) {
	for _, n := range []int{1, 5, 7, 8} {
		cells := make([]string, n)
		for i := range cells {
			cells[i] = "1"
		}
		cells[0] = "01/02/2024"

		p, logs := newTestParser()
		rows, err := p.ParseHistory("T", strings.NewReader(historyPage(cells)))
		if err != nil {
			t.Fatalf("%d cells: unexpected error: %v", n, err)
		}
		if len(rows) != 0 {
			t.Errorf("%d cells: expected row to be skipped", n)
		}
		if logs.Len() != 1 {
			t.Errorf("%d cells: expected one warning, got %d", n, logs.Len())
		}
	}
}

func TestParseHistory_MissingContainer(t *testing.T) {
	p, _ := newTestParser()

	_, err := p.ParseHistory("AAPL", openFixture(t, "missing_container.html"))
	if !IsParsingError(err) {
		t.Fatalf("expected ParsingError, got %v", err)
	}
}

func TestParseHistory_MissingTable(t *testing.T) {
	p, _ := newTestParser()
	page := `<html><body><div id="quotes_content_left_pnlAJAX"><p>no data</p></div></body></html>`

	_, err := p.ParseHistory("AAPL", strings.NewReader(page))
	if !IsParsingError(err) {
		t.Fatalf("expected ParsingError, got %v", err)
	}
}

func TestParseTrades(t *testing.T) {
	p, logs := newTestParser()

	rows, err := p.ParseTrades("AAPL", 1, openFixture(t, "trades.html"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}

	cook := rows[0]
	if cook.Insider != "COOK TIMOTHY D" || cook.Relation != "Chief Executive Officer" {
		t.Errorf("unexpected insider: %+v", cook)
	}
	if cook.LastDate.String() != "2023-10-02" {
		t.Errorf("unexpected date %s", cook.LastDate)
	}
	if cook.OwnerType != models.OwnerTypeDirect {
		t.Errorf("expected direct owner, got %v", cook.OwnerType)
	}
	if cook.SharesTraded != 511000 || cook.SharesHold != 3280557 {
		t.Errorf("unexpected shares: %+v", cook)
	}
	if cook.LastPrice == nil || *cook.LastPrice != 173.04 {
		t.Errorf("unexpected last price: %v", cook.LastPrice)
	}

	levinson := rows[1]
	if levinson.LastPrice != nil {
		t.Errorf("expected empty last price to be absent, got %v", *levinson.LastPrice)
	}
	if levinson.OwnerType != models.OwnerTypeIndirect {
		t.Errorf("expected indirect owner, got %v", levinson.OwnerType)
	}

	// Short row and unparseable date.
	if n := logs.Len(); n != 2 {
		t.Errorf("expected 2 warnings, got %d", n)
	}
}

func TestParseTrades_BeyondLastPage(t *testing.T) {
	p, _ := newTestParser()

	rows, err := p.ParseTrades("AAPL", 4, openFixture(t, "trades.html"))
	if err != nil {
		t.Fatalf("expected no error past the last page, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestParseTrades_NoPagination(t *testing.T) {
	t.Run("first page is parsed", func(t *testing.T) {
		p, _ := newTestParser()
		rows, err := p.ParseTrades("AAPL", 1, openFixture(t, "trades_single_page.html"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(rows))
		}
	})

	t.Run("second page is empty", func(t *testing.T) {
		p, _ := newTestParser()
		rows, err := p.ParseTrades("AAPL", 2, openFixture(t, "trades_single_page.html"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})
}

func TestParseTrades_MissingTable(t *testing.T) {
	p, _ := newTestParser()
	page := `<html><body><a id="quotes_content_left_lb_LastPage" href="?page=2">last</a></body></html>`

	_, err := p.ParseTrades("AAPL", 1, strings.NewReader(page))
	if !IsParsingError(err) {
		t.Fatalf("expected ParsingError, got %v", err)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name string
		page string
		want int
	}{
		{name: "link with page", page: `<a id="quotes_content_left_lb_LastPage" href="/x?sortname=date&amp;page=7">last</a>`, want: 7},
		{name: "no link", page: `<p>nothing</p>`, want: 1},
		{name: "link without href", page: `<a id="quotes_content_left_lb_LastPage">last</a>`, want: 1},
		{name: "link without page", page: `<a id="quotes_content_left_lb_LastPage" href="/x?sort=1">last</a>`, want: 1},
		{name: "non numeric page", page: `<a id="quotes_content_left_lb_LastPage" href="/x?page=last">last</a>`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageCount(strings.NewReader("<html><body>" + tt.page + "</body></html>"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PageCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTableRows_IgnoresNestedTables(t *testing.T) {
	p, logs := newTestParser()
	page := `<html><body><div class="genTable"><table>
		<tr><td>A</td><td>R</td><td>01/02/2024</td><td>Buy</td><td>Direct</td><td>10</td><td>1.5</td><td>20</td></tr>
		<tr><td><table><tr>
			<td>B</td><td>R</td><td>01/03/2024</td><td>Buy</td><td>Direct</td><td>10</td><td>1.5</td><td>20</td>
		</tr></table></td></tr>
	</table></div></body></html>`

	rows, err := p.ParseTrades("T", 1, strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Insider != "A" {
		t.Fatalf("expected only the outer row, got %+v", rows)
	}
	// The wrapper row has a single cell.
	if logs.Len() != 1 {
		t.Errorf("expected 1 warning, got %d", logs.Len())
	}
}

func historyPage(cells []string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="quotes_content_left_pnlAJAX"><table><tbody><tr>`)
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString(`</tr></tbody></table></div></body></html>`)
	return b.String()
}
