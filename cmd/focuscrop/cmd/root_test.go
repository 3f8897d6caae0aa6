package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so executions of the shared
// root command do not leak into each other
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if _, ok := f.Value.(pflag.SliceValue); !ok {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := GetRootCommand()
	resetFlags(cmd)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	for y := height / 4; y < height/2; y++ {
		for x := width / 2; x < width*3/4; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func decodeDims(t *testing.T, path string) (int, int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "focuscrop", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "fallback chain")
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, expected := range []string{"crop", "plan", "version"} {
		assert.Contains(t, names, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "focuscrop version")
}

func TestRootCommandInvalidFlag(t *testing.T) {
	_, _, err := execute(t, "--no-such-flag")
	assert.Error(t, err)
}

func TestCropCommand(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	src := writeTestImage(t, in, "photo.png", 200, 100)

	_, logs, err := execute(t, "crop", src, "--out", out, "--format", "png", "--backend", "none", "--debug")
	require.NoError(t, err, logs)

	w, h := decodeDims(t, filepath.Join(out, "photo_crop.png"))
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)

	assert.FileExists(t, filepath.Join(out, "photo_crop_debug.png"))

	js, err := os.ReadFile(filepath.Join(out, "photo_crop.json"))
	require.NoError(t, err)
	var plan struct {
		Crop struct {
			Method string `json:"method"`
		} `json:"crop"`
	}
	require.NoError(t, json.Unmarshal(js, &plan))
	assert.Equal(t, "attention", plan.Crop.Method)

	assert.Contains(t, logs, "wrote crop")
}

func TestCropCommandDirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeTestImage(t, in, "a.png", 120, 80)
	writeTestImage(t, in, "b.png", 80, 120)

	_, logs, err := execute(t, "crop", in, "--out", out, "--format", "jpg", "--workers", "2", "--ratio", "1:2")
	require.NoError(t, err, logs)

	for _, name := range []string{"a_crop.jpg", "b_crop.jpg"} {
		w, h := decodeDims(t, filepath.Join(out, name))
		assert.InDelta(t, 0.5, float64(w)/float64(h), 0.02, name)
	}
	assert.NoFileExists(t, filepath.Join(out, "a_crop_debug.jpg"))
}

func TestCropCommandMissingInput(t *testing.T) {
	_, _, err := execute(t, "crop", filepath.Join(t.TempDir(), "missing.jpg"), "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input not found")
}

func TestCropCommandRequiresArgs(t *testing.T) {
	_, _, err := execute(t, "crop")
	assert.Error(t, err)
}

func TestCropCommandConfigFile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	src := writeTestImage(t, in, "portrait.png", 200, 100)

	cfgPath := filepath.Join(in, "focuscrop.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
crop:
  target_ratio: "4:5"
output:
  dir: `+out+`
  format: png
  suffix: _cfg
`), 0o644))

	_, logs, err := execute(t, "crop", src, "--config", cfgPath)
	require.NoError(t, err, logs)

	w, h := decodeDims(t, filepath.Join(out, "portrait_cfg.png"))
	assert.Equal(t, 80, w)
	assert.Equal(t, 100, h)
}

func TestPlanCommand(t *testing.T) {
	src := writeTestImage(t, t.TempDir(), "wide.png", 200, 100)

	out, _, err := execute(t, "plan", src, "--ratio", "16:9")
	require.NoError(t, err)

	var plan struct {
		Source string `json:"source"`
		Crop   struct {
			Rect struct {
				W float64 `json:"w"`
				H float64 `json:"h"`
			} `json:"rect"`
		} `json:"crop"`
		Detection struct {
			RunID    string            `json:"run_id"`
			Attempts []json.RawMessage `json:"attempts"`
		} `json:"detection"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))

	assert.Equal(t, src, plan.Source)
	assert.InDelta(t, 16.0/9.0, plan.Crop.Rect.W/plan.Crop.Rect.H, 1e-6)
	assert.NotEmpty(t, plan.Detection.RunID)
	assert.NotEmpty(t, plan.Detection.Attempts)
}

func TestPlanCommandInvalidRatio(t *testing.T) {
	src := writeTestImage(t, t.TempDir(), "x.png", 50, 50)

	_, _, err := execute(t, "plan", src, "--ratio", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_ratio")
}

func TestPlanCommandEnvironment(t *testing.T) {
	src := writeTestImage(t, t.TempDir(), "x.png", 50, 50)
	t.Setenv("FOCUSCROP_VISION_BACKEND", "bogus")

	_, _, err := execute(t, "plan", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vision.backend")
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "x.png", 60, 40)
	metrics := filepath.Join(dir, "focuscrop.prom")

	_, _, err := execute(t, "plan", src, "--metrics-file", metrics)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "focuscrop_detection_resolutions_total")
	assert.Contains(t, string(data), "focuscrop_crop_area_ratio")
}
