package detection

import (
	"math"
	"strings"

	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/types"
)

// Merge folds the candidates of one detector into a single region. Candidates
// below minConfidence are dropped; the rest are always unioned so that a
// second subject is never discarded. spread reports whether any two kept
// candidates have centers more than spreadFactor × the image diagonal apart.
func Merge(method types.Method, regions []types.SalientRegion, d geometry.Dimensions, minConfidence, spreadFactor float64) (region types.SalientRegion, outcome Outcome, spread bool) {
	if len(regions) == 0 {
		return types.SalientRegion{}, OutcomeEmpty, false
	}

	kept := make([]types.SalientRegion, 0, len(regions))
	for _, r := range regions {
		if !usable(r) || r.Confidence < minConfidence {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return types.SalientRegion{}, OutcomeLowConfidence, false
	}

	rects := make([]geometry.Rect, len(kept))
	labels := make([]string, 0, len(kept))
	seen := map[string]struct{}{}
	confidence := 0.0
	for i, r := range kept {
		rects[i] = r.Rect
		confidence = math.Max(confidence, r.Confidence)
		if _, dup := seen[r.Label]; r.Label != "" && !dup {
			seen[r.Label] = struct{}{}
			labels = append(labels, r.Label)
		}
	}
	union, _ := geometry.UnionAll(rects)

	limit := spreadFactor * d.Diagonal()
	for i := range kept {
		for j := i + 1; j < len(kept); j++ {
			if kept[i].Rect.Center().Distance(kept[j].Rect.Center()) > limit {
				spread = true
			}
		}
	}

	return types.SalientRegion{
		Rect:       union.ClampTo(d),
		Method:     method,
		Confidence: confidence,
		Label:      strings.Join(labels, ","),
	}, OutcomeAccepted, spread
}

func usable(r types.SalientRegion) bool {
	for _, v := range []float64{r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H, r.Confidence} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Rect.W >= 0 && r.Rect.H >= 0
}
