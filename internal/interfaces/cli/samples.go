package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// Sample is a built-in example paragraph for quick experiments.
type Sample struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

var samples = []Sample{
	{
		Name: "AI generated: research summary",
		Text: "Artificial intelligence detectors analyze word choice, rhythm, and structure " +
			"to guess whether a paragraph was crafted by software. The systems compare " +
			"thousands of previous examples, extract stylometric signals, and output a " +
			"confidence score that educators can review alongside their own judgement.",
	},
	{
		Name: "Human written: travel diary",
		Text: "我在花東縱谷騎腳踏車時被午後雷陣雨嚇了一跳，索性躲進路邊小書店。店長端來熱茶，" +
			"我們聊起他收藏的二手詩集，等到雨停才發現天色整個被晚霞染成粉橘色。",
	},
	{
		Name: "Human written: opinion snippet",
		Text: "The class discussion felt messy but alive. People interrupted each other, " +
			"changed their minds mid-sentence, and even abandoned examples halfway through. " +
			"That jagged energy is the opposite of the tidy, polished voice I'm used to from chatbots.",
	},
}

// Samples returns the built-in example texts. Callers must not mutate the
// returned slice.
func Samples() []Sample {
	return samples
}

// sampleList renders the sample catalogue as a table.
type sampleList []Sample

func (l sampleList) TableHeaders() []string {
	return []string{"#", "name", "preview"}
}

func (l sampleList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for i, s := range l {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Name, preview(s.Text, 60)})
	}
	return rows
}

// NewSamplesCmd creates the samples command, which lists the built-in
// example texts usable with `detect --sample`.
func NewSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List built-in example texts",
		Long:  "List the built-in example paragraphs that `veritype detect --sample N` scores.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, sampleList(Samples()))
		},
	}
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
