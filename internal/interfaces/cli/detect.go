package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/pkg/types/detection"
)

// detectOutput shapes a single detection for all three output formats.
type detectOutput struct {
	RequestID string             `json:"request_id,omitempty"`
	Result    *detection.Result  `json:"result"`
	Opinion   *detection.Opinion `json:"opinion,omitempty"`
	Cached    bool               `json:"cached,omitempty"`
}

func (o detectOutput) TableHeaders() []string {
	return detection.FlatHeader()
}

func (o detectOutput) TableRows() [][]string {
	if o.Result == nil {
		return nil
	}
	return [][]string{o.Result.Flatten()}
}

// String renders the human-readable default format.
func (o detectOutput) String() string {
	if o.Result == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Label:             %s\n", o.Result.Label)
	fmt.Fprintf(&sb, "AI probability:    %.4f\n", o.Result.AIProbability)
	fmt.Fprintf(&sb, "Human probability: %.4f\n", o.Result.HumanProbability)
	sb.WriteString("\nFeatures:\n")
	for _, name := range detection.FeatureNames() {
		fmt.Fprintf(&sb, "  %-20s %.4f\n", name, o.Result.Features[name])
	}
	if o.Opinion != nil {
		switch o.Opinion.Status {
		case detection.OpinionOK:
			fmt.Fprintf(&sb, "\nSecond opinion:    %s (%.4f)\n", o.Opinion.Label, o.Opinion.Probability)
			if o.Opinion.Rationale != "" {
				fmt.Fprintf(&sb, "  %s\n", o.Opinion.Rationale)
			}
		default:
			fmt.Fprintf(&sb, "\nSecond opinion:    %s\n", o.Opinion.Status)
		}
	}
	if o.Cached {
		sb.WriteString("\n(cached result)\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewDetectCmd creates the detect command, which scores a single text.
func NewDetectCmd() *cobra.Command {
	var (
		text    string
		file    string
		sample  int
		opinion bool
	)

	cmd := &cobra.Command{
		Use:   "detect [text]",
		Short: "Score a single text as AI- or human-written",
		Long: "Score a single text against the stylometric detector. The text comes\n" +
			"from the positional argument, --text, --file (use \"-\" for stdin), or\n" +
			"--sample (one of the built-in examples; see `veritype samples`).",
		Example: `  veritype detect "The quick brown fox jumps over the lazy dog."
  veritype detect --file essay.txt --output json
  cat essay.txt | veritype detect --file -
  veritype detect --sample 1 --opinion`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if text != "" {
					return fmt.Errorf("--text and a positional argument are mutually exclusive")
				}
				text = args[0]
			}

			input, err := resolveInput(cmd.InOrStdin(), text, file, sample)
			if err != nil {
				return err
			}

			resp, err := cliCtx.Service.Detect(cmd.Context(), &appdetection.DetectRequest{
				Text:           input,
				IncludeOpinion: opinion,
				Source:         "cli",
			})
			if err != nil {
				return err
			}

			return PrintResult(cmd, detectOutput{
				RequestID: resp.RequestID,
				Result:    resp.Result,
				Opinion:   resp.Opinion,
				Cached:    resp.Cached,
			})
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "text to score")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	cmd.Flags().IntVarP(&sample, "sample", "s", 0, "score a built-in example (1-based index)")
	cmd.Flags().BoolVar(&opinion, "opinion", false, "ask the configured oracle for a second opinion")

	return cmd
}

// resolveInput picks the text from exactly one input source. A file of "-"
// reads stdin.
func resolveInput(stdin io.Reader, text, file string, sample int) (string, error) {
	set := 0
	if text != "" {
		set++
	}
	if file != "" {
		set++
	}
	if sample != 0 {
		set++
	}
	if set == 0 {
		return "", fmt.Errorf("a text argument, --text, --file, or --sample is required")
	}
	if set > 1 {
		return "", fmt.Errorf("--text, --file, and --sample are mutually exclusive")
	}

	switch {
	case text != "":
		return text, nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	default:
		all := Samples()
		if sample < 1 || sample > len(all) {
			return "", fmt.Errorf("sample index %d is out of range [1, %d]", sample, len(all))
		}
		return all[sample-1].Text, nil
	}
}
