// Package config provides configuration management for wikimaping.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to magick.LocateConfig and magick.LabelConfig
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Long side capped at 1920 px, quality 91%, output capped at 2 MB
//	// Metadata stripping enabled
//	// ImageMagick located via PATH
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/settings.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # External Tool Location
//
// The ImageMagick location is a settings value, never a global. Two major
// versions with incompatible invocation conventions exist; both are
// supported:
//
//	settings.MagickPath = `C:\Program Files\ImageMagick\magick.exe` // IM >= 7
//	// or
//	settings.ConvertPath = "/usr/bin/convert"    // IM < 7
//	settings.IdentifyPath = "/usr/bin/identify"
package config
