package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyease/internal/keywords"
	"github.com/jonathan/applyease/internal/types"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [file|-]",
	Short: "List the technical keywords of a text",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "as-json", false, "Print a JSON object instead of one keyword per line")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}
	kws := keywords.Classify(text).Sorted()

	out := cmd.OutOrStdout()
	if classifyJSON {
		if kws == nil {
			kws = []string{}
		}
		return json.NewEncoder(out).Encode(types.ClassifyResponse{Keywords: kws})
	}
	if len(kws) > 0 {
		_, err = fmt.Fprintln(out, strings.Join(kws, "\n"))
	}
	return err
}
