package magick

import "strings"

// LabelConfig holds the label appearance settings and the calibration
// values the fitting math scales from.
type LabelConfig struct {
	Font  string
	Color string

	// BaseSize is the point size calibrated for a photo whose long side
	// is BaseSide pixels.
	BaseSize int
	BaseSide int

	// LineWidth is the maximum label line length in characters at
	// BaseSize; longer labels wrap.
	LineWidth int

	// MaxSide is the output long-side cap; images beyond it are scaled
	// down before the label lands on them, so the fit uses the capped
	// size.
	MaxSide int
}

// Fit scales the label to the image and wraps it into lines.
//
// The point size follows the photo's long side (after the output cap),
// with a floor of 16 points. The stroke narrows below 26 points. The wrap
// width shrinks for portrait images, whose usable width is the short
// side, and grows back when the size floor kicked in.
func (c LabelConfig) Fit(text string, info Info, gravity string) Overlay {
	width, height := info.Oriented()
	if width <= 0 || height <= 0 {
		width, height = c.BaseSide, c.BaseSide*3/4
	}

	longSide := width
	if height > longSide {
		longSide = height
	}
	if c.MaxSide > 0 && longSide > c.MaxSide {
		longSide = c.MaxSide
	}

	exact := c.BaseSize
	if c.BaseSide > 0 {
		exact = c.BaseSize * longSide / c.BaseSide
	}
	size := exact
	if size < 16 {
		size = 16
	}
	stroke := 2
	if size < 26 {
		stroke = 1
	}

	lineWidth := c.LineWidth
	if width < height {
		lineWidth = lineWidth * width / height
	}
	if exact != size && size > 0 {
		lineWidth = lineWidth * exact / size
	}
	if lineWidth < 1 {
		lineWidth = 1
	}

	return Overlay{
		Text:        wrap(text, lineWidth),
		Gravity:     gravity,
		PointSize:   size,
		StrokeWidth: stroke,
		Font:        c.Font,
		Color:       c.Color,
	}
}

// wrap word-wraps text to at most width characters per line. Words longer
// than the width stay unbroken on their own line.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) <= width {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	lines = append(lines, line)

	return strings.Join(lines, "\n")
}
