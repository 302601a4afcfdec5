package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/pkg/types/detection"
)

// batchOutput shapes a batch run for table and text output.
type batchOutput struct {
	RequestID string                 `json:"request_id,omitempty"`
	Items     []detection.BatchItem  `json:"items"`
	Summary   detection.BatchSummary `json:"summary"`
}

func (o batchOutput) TableHeaders() []string {
	return append(append([]string{"index"}, detection.FlatHeader()...), "error")
}

func (o batchOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Items))
	width := len(detection.FlatHeader())
	for _, it := range o.Items {
		row := []string{strconv.Itoa(it.Index)}
		if it.Result != nil {
			row = append(row, it.Result.Flatten()...)
		} else {
			row = append(row, make([]string, width)...)
		}
		row = append(row, it.Error)
		rows = append(rows, row)
	}
	return rows
}

func (o batchOutput) String() string {
	var sb strings.Builder
	sb.WriteString(FormatTable(o.TableHeaders(), o.TableRows()))
	fmt.Fprintf(&sb, "\nTotal: %d  AI: %d  Human: %d  Failed: %d  Mean AI probability: %.4f",
		o.Summary.Total, o.Summary.AICount, o.Summary.HumanCount,
		o.Summary.FailedCount, o.Summary.MeanAIProbability)
	return sb.String()
}

// NewBatchCmd creates the batch command, which scores every text in a
// CSV/JSON/JSONL file.
func NewBatchCmd() *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "batch <input-file>",
		Short: "Score every text in a CSV, JSON, or JSONL file",
		Long: "Score every text in the given file. CSV files need a \"text\" column;\n" +
			"JSON files hold an array of strings or of objects with a \"text\" field;\n" +
			"JSONL files hold one such value per line.",
		Example: `  veritype batch essays.csv
  veritype batch texts.jsonl --format csv --out results.csv
  veritype batch texts.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			inputPath := args[0]
			srcFormat, err := appdetection.DetectSourceFormat(inputPath)
			if err != nil {
				return err
			}

			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", inputPath, err)
			}
			defer f.Close()

			texts, err := appdetection.ParseSource(f, srcFormat)
			if err != nil {
				return err
			}

			resp, err := cliCtx.Service.DetectBatch(cmd.Context(), &appdetection.BatchRequest{
				Texts:  texts,
				Source: "cli",
			})
			if err != nil {
				return err
			}

			out := batchOutput{RequestID: resp.RequestID, Items: resp.Items, Summary: resp.Summary}
			if format == "csv" {
				return writeBatchCSV(cmd, out, outPath)
			}
			if outPath != "" {
				return fmt.Errorf("--out requires --format csv")
			}
			return PrintResult(cmd, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "result format override: csv")
	cmd.Flags().StringVar(&outPath, "out", "", "write CSV results to a file instead of stdout")

	return cmd
}

func writeBatchCSV(cmd *cobra.Command, out batchOutput, outPath string) error {
	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	if err := appdetection.WriteResultsCSV(w, out.Items); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d results to %s\n", len(out.Items), outPath)
	}
	return nil
}
