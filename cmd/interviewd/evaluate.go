package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mind-engage/interview-console/internal/scoring"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	evalFile        string
	evalResolution  string
	evalMinimalRate float64
	evalMaxValue    float64
)

//nolint:gochecknoglobals // Cobra boilerplate
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score an interview offline from a JSON document",
	Long: `Runs the scoring engine over a self-contained document and prints the result.

Input:
  {"questions": [{"id": "q1", "weight": 2}],
   "scores":    [{"question_id": "q1", "interviewer_id": "alice", "value": 4}],
   "minimal_rate": 70,
   "prior": {...}}

Examples:
  interviewd evaluate --file interview.json
  cat interview.json | interviewd evaluate --file - --resolution latest`,
	RunE: runEvaluate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVarP(&evalFile, "file", "f", "", "input document, - for stdin")
	evaluateCmd.Flags().StringVar(&evalResolution, "resolution", string(scoring.ResolveAverage), "how several interviewers' ratings of one question combine: first|latest|average|highest|lowest")
	evaluateCmd.Flags().Float64Var(&evalMinimalRate, "minimal-rate", scoring.DefaultMinimalRate, "pass threshold when the document carries none")
	evaluateCmd.Flags().Float64Var(&evalMaxValue, "max-value", scoring.DefaultMaxValue, "top of the rating scale")
	_ = evaluateCmd.MarkFlagRequired("file")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	res, err := scoring.ParseResolution(evalResolution)
	if err != nil {
		return err
	}
	if err := scoring.ValidateMinimalRate(evalMinimalRate); err != nil {
		return err
	}
	engine, err := scoring.New(scoring.WithResolution(res), scoring.WithMaxValue(evalMaxValue))
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if evalFile != "-" {
		f, err := os.Open(evalFile)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	in, err := scoring.DecodeInput(r)
	if err != nil {
		return err
	}
	out, err := engine.Evaluate(in, evalMinimalRate)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "write result")
}
