package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/fx"
	"proxy-rotator/internal/domain"
	"proxy-rotator/internal/interfaces"
)

// Module exports the goquery table extractor
var Module = fx.Provide(New)

type goqueryExtractor struct{}

func New() interfaces.TableExtractor {
	return goqueryExtractor{}
}

// ExtractRows parses page as HTML, finds the first table whose id equals tableID
// and returns the trimmed text of every td in each tbody row.
func (goqueryExtractor) ExtractRows(page []byte, tableID string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse document: %v", domain.ErrMalformedTable, err)
	}

	table := findTableByID(doc, tableID)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table with id %q", domain.ErrTableNotFound, tableID)
	}

	body := table.ChildrenFiltered("tbody")
	if body.Length() == 0 {
		return nil, fmt.Errorf("%w: table %q has no body", domain.ErrMalformedTable, tableID)
	}

	rows := body.First().ChildrenFiltered("tr")
	result := make([][]string, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		result = append(result, cellTexts(row))
	})

	return result, nil
}

// The id is compared literally so it never has to be escaped into a selector.
func findTableByID(doc *goquery.Document, id string) *goquery.Selection {
	return doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("id")
		return ok && v == id
	}).First()
}

func cellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}
