package utils

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tiff": true, "tif": true, "webp": true,
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// GetFileExtension returns the lowercase file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	return imageExts[GetFileExtension(filename)]
}

// IsURL reports whether source is an http(s) URL
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// BaseName returns a file-system safe name for source without extension.
// URLs use the last path segment, falling back to the host.
func BaseName(source string) string {
	name := filepath.Base(source)
	if IsURL(source) {
		if u, err := url.Parse(source); err == nil {
			name = path.Base(u.Path)
			if name == "/" || name == "." {
				return sanitizeOr(u.Host)
			}
		}
	}

	return sanitizeOr(strings.TrimSuffix(name, path.Ext(name)))
}

func sanitizeOr(name string) string {
	name = SanitizeFilename(name)
	if name == "" {
		return "image"
	}
	return name
}

// GenerateOutputFilename builds <outputDir>/<base><suffix>.<format>
func GenerateOutputFilename(source, outputDir, suffix, format string) string {
	if format == "" {
		format = GetFileExtension(source)
		if format == "" || !IsImageFile(source) {
			format = "jpg"
		}
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", BaseName(source), suffix, format))
}

// ListImageFiles recursively lists all image files in a directory in
// lexical order
func ListImageFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(p) {
			files = append(files, p)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// ExpandInputs resolves command-line sources. Directories are expanded to
// the image files they contain; URLs and files are passed through.
func ExpandInputs(sources []string) ([]string, error) {
	var out []string
	for _, s := range sources {
		switch {
		case IsURL(s):
			out = append(out, s)
		case DirExists(s):
			files, err := ListImageFiles(s)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", s, err)
			}
			out = append(out, files...)
		case FileExists(s):
			out = append(out, s)
		default:
			return nil, fmt.Errorf("input not found: %s", s)
		}
	}
	return out, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	return strings.Trim(result, " .")
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
