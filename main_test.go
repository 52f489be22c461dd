package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonghaoch/transaction-service-go/internal/transaction"
)

func runTotal(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"total"}, args...))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTotalCmd_Args(t *testing.T) {
	out, err := runTotal(t, "", "--", "10", "20", "-5")
	require.NoError(t, err)
	assert.Equal(t, "30", out)

	out, err = runTotal(t, "")
	require.NoError(t, err)
	assert.Equal(t, "0", out)

	out, err = runTotal(t, "", "0.1", "0.2")
	require.NoError(t, err)
	assert.Equal(t, "0.3", out)
}

func TestTotalCmd_Stdin(t *testing.T) {
	out, err := runTotal(t, `{"transactions": [1, 2, 3]}`, "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, "6", out)

	_, err = runTotal(t, `{"transactions": "not-a-list"}`, "-f", "-")
	require.Error(t, err)
	assert.ErrorIs(t, err, transaction.ErrInvalidInput)
}

func TestTotalCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"transactions": [-10, -2]}`), 0600))

	out, err := runTotal(t, "", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "0", out)

	_, err = runTotal(t, "", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTotalCmd_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"not a number", []string{"abc"}},
		{"quoted number", []string{`"12"`}},
		{"injected bracket", []string{"1]"}},
		{"file and args", []string{"-f", "-", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runTotal(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestParseAmounts(t *testing.T) {
	batch, err := parseAmounts([]string{"1.5", "-2", "3"})
	require.NoError(t, err)
	assert.Len(t, batch, 3)
	assert.Equal(t, "4.5", batch.Total().String())
}
