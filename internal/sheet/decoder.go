package sheet

import (
	"bytes"
	"strings"

	"github.com/gocarina/gocsv"
)

// Decoder turns a raw CSV export into records. It is an injected
// dependency so tests can substitute canned data for the real parser.
type Decoder interface {
	Decode(data []byte) ([]Record, error)
}

// CSVDecoder decodes published spreadsheet exports: the first row is the
// header, blank rows are skipped, one record per data row.
type CSVDecoder struct{}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (CSVDecoder) Decode(data []byte) ([]Record, error) {
	// Sheets exported from spreadsheet tools often lead with a BOM,
	// which would otherwise end up glued to the first header name.
	data = bytes.TrimPrefix(data, utf8BOM)

	rows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(row))
		for name, value := range row {
			rec[strings.TrimSpace(name)] = value
		}
		records = append(records, rec)
	}
	return records, nil
}
