package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/pkg/types/detection"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func echoBatchService(gotTexts *[]string) *mockService {
	return &mockService{
		batchFn: func(_ context.Context, req *appdetection.BatchRequest) (*appdetection.BatchResponse, error) {
			if gotTexts != nil {
				*gotTexts = req.Texts
			}
			items := make([]detection.BatchItem, len(req.Texts))
			for i := range req.Texts {
				items[i] = detection.BatchItem{Index: i, Result: fixedResult()}
			}
			return &appdetection.BatchResponse{
				RequestID: "b-1",
				Items:     items,
				Summary:   detection.Summarize(items),
			}, nil
		},
	}
}

func TestBatch_CSVInput(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "texts.csv", "text\nfirst row\nsecond row\n")

	var gotTexts []string
	out, err := runCommand(t, echoBatchService(&gotTexts), "text", "batch", path)
	require.NoError(t, err)

	assert.Equal(t, []string{"first row", "second row"}, gotTexts)
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "AI: 2")
}

func TestBatch_JSONLInput(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "texts.jsonl", "\"one\"\n{\"text\": \"two\"}\n")

	var gotTexts []string
	_, err := runCommand(t, echoBatchService(&gotTexts), "text", "batch", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, gotTexts)
}

func TestBatch_CSVOutput(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "texts.csv", "text\nonly row\n")

	out, err := runCommand(t, echoBatchService(nil), "text", "batch", path, "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "index,label,ai_probability")
	assert.Contains(t, lines[1], "AI-written")
}

func TestBatch_CSVOutputToFile(t *testing.T) {
	t.Parallel()

	inPath := writeTempFile(t, "texts.csv", "text\nonly row\n")
	outPath := filepath.Join(t.TempDir(), "results.csv")

	out, err := runCommand(t, echoBatchService(nil), "text",
		"batch", inPath, "--format", "csv", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 results to")

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "AI-written")
}

func TestBatch_OutRequiresCSVFormat(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "texts.csv", "text\nrow\n")
	_, err := runCommand(t, echoBatchService(nil), "text", "batch", path, "--out", "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format csv")
}

func TestBatch_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "texts.txt", "whatever")
	_, err := runCommand(t, echoBatchService(nil), "text", "batch", path)
	require.Error(t, err)
}

func TestBatch_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, echoBatchService(nil), "text", "batch", "/nonexistent/texts.csv")
	require.Error(t, err)
}

func TestBatch_JSONOutputFormat(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "texts.json", `["one", "two"]`)

	out, err := runCommand(t, echoBatchService(nil), "json", "batch", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"summary"`)
	assert.Contains(t, out, `"request_id": "b-1"`)
}
