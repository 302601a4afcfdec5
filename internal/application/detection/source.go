package detection

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	apperrors "github.com/veritype/veritype/pkg/errors"
)

// SourceFormat identifies the layout of an uploaded batch file.
type SourceFormat string

const (
	// FormatCSV is a CSV file with a header row containing a "text" column.
	FormatCSV SourceFormat = "csv"
	// FormatJSON is a JSON array of strings or of objects with a "text" field.
	FormatJSON SourceFormat = "json"
	// FormatJSONLines is one JSON string or object per line.
	FormatJSONLines SourceFormat = "jsonl"
)

// textColumn is the required column/field name in CSV and JSON sources.
const textColumn = "text"

// DetectSourceFormat maps a filename extension to a SourceFormat.
func DetectSourceFormat(filename string) (SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONLines, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeSourceUnsupported,
			fmt.Sprintf("unsupported batch file type %q (want .csv, .json, .jsonl)", filepath.Ext(filename)))
	}
}

// ParseSource reads a batch file and returns its texts in file order. Blank
// rows are kept so that per-element errors line up with the source rows.
func ParseSource(r io.Reader, format SourceFormat) ([]string, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatJSON:
		return parseJSON(r)
	case FormatJSONLines:
		return parseJSONLines(r)
	default:
		return nil, apperrors.New(apperrors.ErrCodeSourceUnsupported,
			fmt.Sprintf("unsupported batch source format %q", format))
	}
}

func parseCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.New(apperrors.ErrCodeSourceEmpty, "CSV file is empty")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError, "failed to read CSV header")
	}

	textIdx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), textColumn) {
			textIdx = i
			break
		}
	}
	if textIdx < 0 {
		return nil, apperrors.New(apperrors.ErrCodeSourceNoTextColumn,
			fmt.Sprintf("CSV header has no %q column", textColumn))
	}

	var texts []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError,
				fmt.Sprintf("malformed CSV row %d", len(texts)+2))
		}
		if textIdx >= len(record) {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, record[textIdx])
	}
	if len(texts) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSourceEmpty, "CSV file has a header but no rows")
	}
	return texts, nil
}

func parseJSON(r io.Reader) ([]string, error) {
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError,
			"JSON source must be an array of strings or objects")
	}
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSourceEmpty, "JSON array is empty")
	}

	texts := make([]string, 0, len(raw))
	for i, elem := range raw {
		text, err := decodeTextElement(elem)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError,
				fmt.Sprintf("JSON array element %d", i))
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func parseJSONLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var texts []string
	line := 0
	for scanner.Scan() {
		line++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" {
			continue
		}
		text, err := decodeTextElement(json.RawMessage(trimmed))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError,
				fmt.Sprintf("JSON Lines record on line %d", line))
		}
		texts = append(texts, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSourceParseError, "failed to read JSON Lines source")
	}
	if len(texts) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSourceEmpty, "JSON Lines source has no records")
	}
	return texts, nil
}

// decodeTextElement accepts either a bare JSON string or an object with a
// "text" field.
func decodeTextElement(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("expected a string or an object, got %s", truncateRaw(raw))
	}
	for key, val := range obj {
		if strings.EqualFold(key, textColumn) {
			if err := json.Unmarshal(val, &s); err != nil {
				return "", fmt.Errorf("field %q is not a string", key)
			}
			return s, nil
		}
	}
	return "", fmt.Errorf("object has no %q field", textColumn)
}

func truncateRaw(raw json.RawMessage) string {
	const limit = 40
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
