package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmu-ragent/ragserver/models"
)

func TestResultLogAppendWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	rlog := NewResultLog(path)

	require.NoError(t, rlog.Append(models.EvaluateResponse{QueryID: "q1", GeneratedResponse: "answer one"}))
	require.NoError(t, rlog.Append(models.EvaluateResponse{QueryID: "q2", GeneratedResponse: "answer two"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first models.EvaluateResponse
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "q1", first.QueryID)
	assert.Equal(t, "answer one", first.GeneratedResponse)
}

func TestResultLogResetRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	rlog := NewResultLog(path)

	require.NoError(t, rlog.Append(models.EvaluateResponse{QueryID: "q1", GeneratedResponse: "stale"}))
	require.NoError(t, rlog.Reset())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestResultLogResetWithoutFile(t *testing.T) {
	rlog := NewResultLog(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.NoError(t, rlog.Reset())
}
