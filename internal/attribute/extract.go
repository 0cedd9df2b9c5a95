package attribute

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"sjsage522/specharvest/logger"
)

// RawPair is one header/value cell pair taken verbatim from a spec table row
type RawPair struct {
	Key   string
	Value string
}

// ExtractPairs walks every table row under root and returns its raw pairs in document order.
//
// Two row shapes are recognised and a row may yield pairs from both:
//   - one th with several td ("보관방식 | 상온 ○ | 냉장 ○"): every non-glyph td becomes a
//     value of the th key;
//   - th/td columns paired 1:1, with the value lightly cleaned.
//
// Option cells in a fan-out row keep only their label: "상온 ○" yields "상온".
func ExtractPairs(root *goquery.Selection) []RawPair {
	var pairs []RawPair
	root.Find("tr").Each(func(i int, tr *goquery.Selection) {
		rowPairs, err := extractRow(tr)
		if err != nil {
			logger.Debug("spec row %d skipped: %v", i, err)
			return
		}
		pairs = append(pairs, rowPairs...)
	})
	return pairs
}

// ExtractSpecs extracts the raw pairs under root and merges them into a SpecMap
func ExtractSpecs(root *goquery.Selection) *SpecMap {
	specs := NewSpecMap()
	for _, p := range ExtractPairs(root) {
		specs.Add(p.Key, p.Value)
	}
	return specs
}

// extractRow collects a row's pairs locally so a failing row contributes nothing
func extractRow(tr *goquery.Selection) (pairs []RawPair, err error) {
	defer func() {
		if r := recover(); r != nil {
			pairs = nil
			err = fmt.Errorf("malformed row: %v", r)
		}
	}()

	var headers, cells []string
	tr.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cellText(th))
	})
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, cellText(td))
	})

	fanOut := len(headers) == 1 && len(cells) > 1
	if fanOut {
		parent := headers[0]
		for _, cell := range cells {
			if cell == "" || IsCheckmark(cell) {
				continue
			}
			if option := stripCheckmarks(cell); option != "" {
				pairs = append(pairs, RawPair{Key: parent, Value: option})
			}
		}
	}

	for i := 0; i < min(len(headers), len(cells)); i++ {
		key := headers[i]
		if key == "" {
			continue
		}
		value := CleanInline(cells[i])
		if fanOut {
			if option := stripCheckmarks(value); option != "" {
				value = option
			}
		}
		if value != "" {
			pairs = append(pairs, RawPair{Key: key, Value: value})
		}
	}

	return pairs, nil
}

// cellText approximates rendered innerText: whitespace collapsed, NFC normalized
func cellText(s *goquery.Selection) string {
	return norm.NFC.String(collapseSpace(s.Text()))
}

// markSymbols are the checkmarks that never occur as letters inside a label
var markSymbols = []string{"○", "●"}

func isMarkSymbol(token string) bool {
	for _, m := range markSymbols {
		if token == m {
			return true
		}
	}
	return false
}

// stripCheckmarks drops mark symbols around an option label ("상온 ○" -> "상온").
// Latin O/o tokens are kept since they can be part of the label ("Type O").
func stripCheckmarks(text string) string {
	fields := strings.Fields(text)
	for len(fields) > 0 && isMarkSymbol(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	for len(fields) > 0 && isMarkSymbol(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}
