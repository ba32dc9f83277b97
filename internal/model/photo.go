package model

import (
	"fmt"
	"time"
)

// PhotoMetadata holds the fields a label template can be rendered against.
//
// CaptureTime is the moment the photo was taken, sourced from EXIF when
// available and from the file's modification time otherwise. A zero
// CaptureTime means no usable timestamp could be resolved at all; date and
// time tags then render as empty and suppress their whole template group.
//
// FileName is the source file's base name with the final extension
// stripped ("trip.coast.jpg" -> "trip.coast").
type PhotoMetadata struct {
	CaptureTime time.Time
	FileName    string
}

// HasTime reports whether a usable timestamp was resolved.
func (m PhotoMetadata) HasTime() bool {
	return !m.CaptureTime.IsZero()
}

// Alignment names the photo corner a label is anchored to.
type Alignment int

const (
	AlignTopLeft Alignment = iota
	AlignTopRight
	AlignBottomLeft
	AlignBottomRight
)

// alignmentNames are the user-facing corner names, matching the
// --label_alignment flag values.
var alignmentNames = map[Alignment]string{
	AlignTopLeft:     "TopLeft",
	AlignTopRight:    "TopRight",
	AlignBottomLeft:  "BottomLeft",
	AlignBottomRight: "BottomRight",
}

// gravities maps each corner to the ImageMagick -gravity argument.
var gravities = map[Alignment]string{
	AlignTopLeft:     "NorthWest",
	AlignTopRight:    "NorthEast",
	AlignBottomLeft:  "SouthWest",
	AlignBottomRight: "SouthEast",
}

// ParseAlignment converts a corner name into an Alignment.
//
// Returns an error listing the accepted names when the input matches none
// of them.
func ParseAlignment(s string) (Alignment, error) {
	for a, name := range alignmentNames {
		if s == name {
			return a, nil
		}
	}
	return AlignBottomRight, fmt.Errorf("unknown alignment %q (expected TopLeft, TopRight, BottomLeft or BottomRight)", s)
}

// String returns the user-facing corner name.
func (a Alignment) String() string {
	if name, ok := alignmentNames[a]; ok {
		return name
	}
	return alignmentNames[AlignBottomRight]
}

// Gravity returns the ImageMagick gravity for the corner.
func (a Alignment) Gravity() string {
	if g, ok := gravities[a]; ok {
		return g
	}
	return gravities[AlignBottomRight]
}

// BatchRequest is the validated input of one conversion batch.
//
// It is built once from the command line (or the TUI form) and not modified
// afterwards. An empty Destination means files are converted in place; an
// empty LabelTemplate means no label is overlaid.
type BatchRequest struct {
	// Paths are the file and/or directory paths to process, in the order
	// they were supplied.
	Paths []string

	// Destination is the folder converted files are written into.
	// Empty means convert in place.
	Destination string

	// NoBackup suppresses the backup copy when converting in place.
	// Ignored when Destination is set, since the original stays untouched.
	NoBackup bool

	// LabelTemplate is the label template string, empty for no label.
	LabelTemplate string

	// Alignment is the corner the label is anchored to.
	Alignment Alignment

	// DryRun lists planned work without invoking the external tool.
	DryRun bool
}

// ProcessingJob describes the conversion of a single discovered file.
//
// A job is constructed once per file by the placement policy, consumed once
// by the orchestrator and discarded after the external call completes.
type ProcessingJob struct {
	// Source is the path of the file to convert.
	Source string

	// Dest is the path the converted output is written to. Equal to Source
	// when converting in place.
	Dest string

	// Backup is the path the original is moved to before an in-place
	// conversion. Empty when no backup is kept.
	Backup string

	// Label is the rendered label text, empty for no overlay.
	Label string

	// Alignment is the corner the label is anchored to.
	Alignment Alignment
}
