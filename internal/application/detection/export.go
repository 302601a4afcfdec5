package detection

import (
	"encoding/csv"
	"io"
	"strconv"

	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

// WriteResultsCSV renders batch items as CSV in input order: one row per
// element, failed elements with an empty result block and the error message
// in the last column.
func WriteResultsCSV(w io.Writer, items []detection.BatchItem) error {
	writer := csv.NewWriter(w)

	header := append([]string{"index"}, detection.FlatHeader()...)
	header = append(header, "error")
	if err := writer.Write(header); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to write CSV header")
	}

	blank := make([]string, len(detection.FlatHeader()))
	for _, item := range items {
		row := []string{strconv.Itoa(item.Index)}
		if item.Result != nil {
			row = append(row, item.Result.Flatten()...)
		} else {
			row = append(row, blank...)
		}
		row = append(row, item.Error)
		if err := writer.Write(row); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to write CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExportFailed, "failed to flush CSV output")
	}
	return nil
}
