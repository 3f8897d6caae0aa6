package types

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Subject is one candidate reported by a vision model
type Subject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// DetectionResponse is the JSON document vision models are asked to return
type DetectionResponse struct {
	Subjects    []Subject `json:"subjects"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
}
