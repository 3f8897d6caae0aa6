package client

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/focuscrop/pkg/types"
)

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInlineComment = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ParseDetectionResponse parses a model reply into a DetectionResponse.
// Replies that contain no usable JSON yield an empty subject list and a
// description saying why, never an error.
func ParseDetectionResponse(raw string) *types.DetectionResponse {
	raw = SanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return &types.DetectionResponse{
			Description: "model returned non-JSON response",
			Tags:        []string{"non-json", "fallback"},
		}
	}

	var result types.DetectionResponse
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return &types.DetectionResponse{
			Description: "failed to parse model response",
			Tags:        []string{"parse-error", "fallback"},
		}
	}
	return &result
}

// SanitizeModelJSON removes code fences, comments, and trailing commas, and
// keeps only the outermost object
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reInlineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
