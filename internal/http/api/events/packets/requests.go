package packets

type CreateEventRequest struct {
	Title            *string `json:"title"`
	Datetime         string  `json:"datetime" binding:"required"`
	Duration         *string `json:"duration"`
	Notes            *string `json:"notes"`
	Link             *string `json:"link"`
	Frequency        string  `json:"frequency"`
	TotalOccurrences *int    `json:"total_occurrences"`
}

// EditEventRequest is a partial update; absent fields keep their current
// values. Scope selects single, future or all semantics (default single).
type EditEventRequest struct {
	Scope            string  `json:"scope"`
	Title            *string `json:"title"`
	Datetime         *string `json:"datetime"`
	Duration         *string `json:"duration"`
	Notes            *string `json:"notes"`
	Link             *string `json:"link"`
	Frequency        *string `json:"frequency"`
	TotalOccurrences *int    `json:"total_occurrences"`
}
