package models

import "encoding/json"

// VariantConfig describes how a single named variant of an image should be
// derived from its original: target format, quality, and resize policy.
//
// Fit selects the resize behavior when both Width and Height are set:
//   - "cover"/"center-crop": scale to fill then center-crop to exact size
//   - "fill"/"stretch"/"exact": scale to exact size, aspect ratio ignored
//   - anything else (including unset): contain within the box, aspect preserved
type VariantConfig struct {
	Format     string `json:"format,omitempty"`
	Quality    *int   `json:"quality,omitempty"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
	MaxWidth   *int   `json:"max_width,omitempty"`
	MaxHeight  *int   `json:"max_height,omitempty"`
	Fit        string `json:"fit,omitempty"`
}

// ProjectSettings is the structured document stored in Project.Settings.
type ProjectSettings struct {
	Variants map[string]VariantConfig `json:"variants,omitempty"`
}

// ParseProjectSettings decodes a project's raw JSON settings column.
// An empty or invalid document yields zero-value settings rather than an
// error: a project with no variants configured is a normal, common case.
func ParseProjectSettings(raw json.RawMessage) ProjectSettings {
	if len(raw) == 0 {
		return ProjectSettings{}
	}
	var s ProjectSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return ProjectSettings{}
	}
	return s
}
