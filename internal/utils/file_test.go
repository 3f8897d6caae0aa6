package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a/b/photo.JPG"))
	assert.True(t, IsImageFile("photo.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("noext"))
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"/tmp/holiday photo.jpg":                 "holiday photo",
		"https://cdn.example.com/img/cat.png?w=1": "cat",
		"https://example.com/":                   "example.com",
		"weird:name?.png":                        "weird_name_",
		"...":                                    "image",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseName(in), in)
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "cat_crop.webp"), GenerateOutputFilename("in/cat.png", "out", "_crop", "webp"))
	assert.Equal(t, filepath.Join("out", "cat.png"), GenerateOutputFilename("in/cat.png", "out", "", ""))
	assert.Equal(t, filepath.Join("out", "dog.jpg"), GenerateOutputFilename("https://x.io/dog", "out", "", ""))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "nested", "c.webp"))
	touch(t, filepath.Join(dir, "readme.md"))
	single := filepath.Join(t.TempDir(), "single.jpg")
	touch(t, single)

	got, err := ExpandInputs([]string{dir, single, "https://example.com/x.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "nested", "c.webp"),
		single,
		"https://example.com/x.jpg",
	}, got)

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing.jpg")})
	assert.ErrorContains(t, err, "input not found")
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(dir))
	require.NoError(t, EnsureDir(dir))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFilename("a/b:c"))
	assert.Equal(t, "name", SanitizeFilename("  name. "))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
