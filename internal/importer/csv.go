package importer

import (
	"encoding/csv"
	"errors"
	"io"
)

// FileImporter splits an uploaded file into a grid of raw string cells.
// Cells are never coerced; type interpretation is left to the client.
type FileImporter interface {
	Rows(r io.Reader, delimiter rune) ([][]string, error)
}

// CSVImporter reads delimiter-separated files. When no delimiter is given
// it is inferred from the configured decimal separator: locales writing
// "1,50" conventionally delimit columns with ";", locales writing "1.50"
// with ",".
type CSVImporter struct {
	decimalSeparator string
}

func NewCSV(decimalSeparator string) *CSVImporter {
	return &CSVImporter{decimalSeparator: decimalSeparator}
}

func (i *CSVImporter) Rows(r io.Reader, delimiter rune) ([][]string, error) {
	if delimiter == 0 {
		delimiter = i.detectDelimiter()
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	// Source files come from bank exports with uneven columns and sloppy
	// quoting; keep every row as-is.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := make([][]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		result = append(result, record)
	}
}

func (i *CSVImporter) detectDelimiter() rune {
	if i.decimalSeparator == "," {
		return ';'
	}
	return ','
}
