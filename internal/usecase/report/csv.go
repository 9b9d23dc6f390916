package report

import (
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows with a header line taken from their csv tags.
func WriteCSV[T any](w io.Writer, rows []T) error {
	return gocsv.Marshal(rows, w)
}
