package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/interview-console/internal/scoring"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		evalFile, evalResolution = "", string(scoring.ResolveAverage)
		evalMinimalRate, evalMaxValue = scoring.DefaultMinimalRate, scoring.DefaultMaxValue
	})
	err := rootCmd.Execute()
	return out.String(), err
}

const doc = `{
  "questions": [{"id": "a", "weight": 2}, {"id": "b", "weight": 1}, {"id": "c", "weight": 3}],
  "scores": [
    {"question_id": "a", "interviewer_id": "alice", "value": 4},
    {"question_id": "b", "interviewer_id": "alice", "value": 5},
    {"question_id": "c", "interviewer_id": "alice", "value": 3},
    {"question_id": "c", "interviewer_id": "bob", "value": 5}
  ]
}`

func TestEvaluate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tests := []struct {
		name       string
		resolution string
		want       float64
	}{
		{"first", "first", 73.3},
		{"highest", "highest", 93.3},
		{"average", "average", 83.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", "evaluate", "--file", path, "--resolution", tt.resolution)
			require.NoError(t, err)
			var res scoring.Result
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			assert.Equal(t, tt.want, res.TotalScore)
			assert.True(t, res.AllScored)
			assert.True(t, res.Passed)
		})
	}
}

func TestEvaluate_StdinAndThreshold(t *testing.T) {
	out, err := runCLI(t, doc, "evaluate", "--file", "-", "--resolution", "first", "--minimal-rate", "80")
	require.NoError(t, err)
	var res scoring.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 80.0, res.MinimalRate)
	assert.False(t, res.Passed)
}

func TestEvaluate_Rejects(t *testing.T) {
	_, err := runCLI(t, doc, "evaluate", "--file", "-", "--resolution", "median")
	require.ErrorIs(t, err, scoring.ErrUnknownResolution)

	_, err = runCLI(t, `{"questions": [], "bogus": 1}`, "evaluate", "--file", "-")
	require.Error(t, err)
}
