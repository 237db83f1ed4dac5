package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franckalain/halalscan/internal/capture"
	"github.com/franckalain/halalscan/internal/models"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cfg := `
logging:
  level: error
database:
  driver: sqlite
  path: ` + filepath.Join(dir, "halalscan.db") + `
ml:
  type: sample
  sample_delay: 0s
camera:
  allow_camera: false
  allow_gallery: true
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func writeLabel(t *testing.T) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.Black)
	}
	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	cfg := writeConfig(t)

	out, err := runCLI(t, "--config", cfg, "analyze", "sugar,", "LARD")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     haram (95%)")

	out, err = runCLI(t, "--config", cfg, "--json", "analyze", "flour")
	require.NoError(t, err)
	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, models.StatusHalal, result.Status)
	assert.Equal(t, 85, result.Confidence)
}

func TestScanAndHistoryCommands(t *testing.T) {
	cfg := writeConfig(t)
	label := writeLabel(t)

	out, err := runCLI(t, "--config", cfg, "--json", "scan", label)
	require.NoError(t, err)
	var record models.ScanHistoryRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.NotEmpty(t, record.ID)
	assert.True(t, record.Result.Status.Valid())

	data, err := capture.FromDataURL(record.Image)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	out, err = runCLI(t, "--config", cfg, "--json", "history", "list")
	require.NoError(t, err)
	var hist historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	require.Len(t, hist.Items, 1)
	assert.Equal(t, record.ID, hist.Items[0].ID)
	assert.Equal(t, 1, hist.Stats.Total)

	out, err = runCLI(t, "--config", cfg, "history", "show", record.ID)
	require.NoError(t, err)
	assert.Contains(t, out, record.ID)

	out, err = runCLI(t, "--config", cfg, "history", "delete", record.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+record.ID)

	out, err = runCLI(t, "--config", cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no scans yet")

	_, err = runCLI(t, "--config", cfg, "history", "show", record.ID)
	assert.ErrorContains(t, err, "not found")
}

func TestHistoryClearCommand(t *testing.T) {
	cfg := writeConfig(t)
	label := writeLabel(t)

	for i := 0; i < 2; i++ {
		_, err := runCLI(t, "--config", cfg, "scan", label)
		require.NoError(t, err)
	}

	out, err := runCLI(t, "--config", cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2 scans:")

	out, err = runCLI(t, "--config", cfg, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "history cleared")

	out, err = runCLI(t, "--config", cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no scans yet")
}

func TestScanCommandErrors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := runCLI(t, "--config", cfg, "scan", "--source", "camera")
	assert.ErrorIs(t, err, capture.ErrPermissionDenied)

	_, err = runCLI(t, "--config", cfg, "scan", "--source", "fax", "x.png")
	assert.ErrorContains(t, err, "unknown image source")

	_, err = runCLI(t, "--config", cfg, "scan", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, capture.ErrCapture)
}
