package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"wikimaping/internal/magick"
)

// Settings holds all configuration options.
type Settings struct {
	// External ImageMagick location. MagickPath points at the combined
	// IM7 binary ("magick"); ConvertPath/IdentifyPath point at the
	// separate IM6 executables. Empty values fall back to a PATH lookup.
	MagickPath   string `json:"magick_path"`
	ConvertPath  string `json:"convert_path"`
	IdentifyPath string `json:"identify_path"`

	// ConvertTimeoutSec bounds one external invocation. 0 disables the
	// timeout.
	ConvertTimeoutSec float64 `json:"convert_timeout_sec"`

	// Output settings
	MaxSide       int  `json:"max_side"`       // long-side pixel cap
	Quality       int  `json:"quality"`        // JPEG quality percent
	MaxOutputKB   int  `json:"max_output_kb"`  // output file size cap, 0 = none
	StripMetadata bool `json:"strip_metadata"` // remove EXIF etc. from output

	// Label settings
	LabelFont         string `json:"label_font"`
	LabelFontSize     int    `json:"label_font_size"`      // at LabelFontSizeSide
	LabelFontSizeSide int    `json:"label_font_size_side"` // photo side the size is calibrated to
	LabelColor        string `json:"label_color"`
	LabelLineWidth    int    `json:"label_line_width"` // max label line length in characters
}

// DefaultSettings returns settings with default values.
//
// The defaults match what the target site tolerates: photos over ~1920 px
// on the long side or ~2 MB get rejected or recompressed on its end
// anyway, and it drops embedded metadata on upload.
func DefaultSettings() *Settings {
	font := "Liberation-Sans-Bold"
	if runtime.GOOS == "windows" {
		font = "Arial-Black"
	}

	return &Settings{
		ConvertTimeoutSec: 120,

		MaxSide:       1920,
		Quality:       91,
		MaxOutputKB:   2048,
		StripMetadata: true,

		LabelFont:         font,
		LabelFontSize:     40,
		LabelFontSizeSide: 1920,
		LabelColor:        "rgb(255,255,255)",
		LabelLineWidth:    60,
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error: defaults are returned so the tool works
// out of the box.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ConvertTimeout returns the per-invocation timeout as a duration.
func (s *Settings) ConvertTimeout() time.Duration {
	return time.Duration(s.ConvertTimeoutSec * float64(time.Second))
}

// ToLocateConfig converts settings to a magick.LocateConfig.
func (s *Settings) ToLocateConfig() magick.LocateConfig {
	return magick.LocateConfig{
		MagickPath:   s.MagickPath,
		ConvertPath:  s.ConvertPath,
		IdentifyPath: s.IdentifyPath,
		Timeout:      s.ConvertTimeout(),
	}
}

// ToLabelConfig converts settings to a magick.LabelConfig.
func (s *Settings) ToLabelConfig() magick.LabelConfig {
	return magick.LabelConfig{
		Font:      s.LabelFont,
		Color:     s.LabelColor,
		BaseSize:  s.LabelFontSize,
		BaseSide:  s.LabelFontSizeSide,
		LineWidth: s.LabelLineWidth,
		MaxSide:   s.MaxSide,
	}
}
