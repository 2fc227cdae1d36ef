package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Row maps column keys to the raw string values of one uploaded line.
type Row map[string]string

// Parse reads a comma-delimited upload. The first record is the header;
// every following record becomes a Row keyed by the header, in file
// order. Columns absent from the header are unreachable by design and
// extra columns in a record are dropped.
// A malformed file (bad quoting, uneven records the csv reader cannot
// recover from) fails as a whole; callers report it as a single
// file-scope error.
func Parse(r io.Reader) (headers []string, rows []Row, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // tolerate ragged records; validation catches blanks

	headers, err = cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, errors.New("file is empty")
		}
		return nil, nil, errors.Wrap(err, "reading header")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading row")
		}
		row := make(Row, len(headers))
		for i, key := range headers {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
