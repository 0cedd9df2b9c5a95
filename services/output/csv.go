package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"sjsage522/specharvest/internal/attribute"
)

// utf8BOM lets spreadsheet tools detect the encoding of Korean text
const utf8BOM = "\uFEFF"

var (
	wideHeader = []string{"상품명", "URL", "상세정보"}
	longHeader = []string{"상품명", "URL", "key", "value"}
)

// Format selects the CSV layout
type Format int

const (
	// FormatWide writes one row per record with the attributes joined by "/"
	FormatWide Format = iota
	// FormatLong writes one row per attribute
	FormatLong
)

// WriteCSV writes records to w in the given format, BOM first
func WriteCSV(w io.Writer, records []attribute.AttributeRecord, format Format) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	switch format {
	case FormatLong:
		if err := cw.Write(longHeader); err != nil {
			return err
		}
		for _, r := range records {
			for _, kv := range r.KeyValues() {
				if err := cw.Write([]string{r.Title, r.URL, kv[0], kv[1]}); err != nil {
					return err
				}
			}
		}
	default:
		if err := cw.Write(wideHeader); err != nil {
			return err
		}
		for _, r := range records {
			if err := cw.Write([]string{r.Title, r.URL, r.DetailInfo()}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, replacing any existing file
func WriteFile(path string, records []attribute.AttributeRecord, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, records, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
