package magick

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestConvertArgs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{
			name: "resize quality strip and size cap",
			params: Params{
				Source:      "in.jpg",
				Dest:        "out.jpg",
				MaxSide:     1920,
				Quality:     91,
				MaxOutputKB: 2048,
				Strip:       true,
			},
			want: []string{
				"in.jpg", "-auto-orient",
				"-resize", "1920x1920>",
				"-quality", "91",
				"-strip",
				"-define", "jpeg:extent=2048KB",
				"out.jpg",
			},
		},
		{
			name:   "bare copy",
			params: Params{Source: "a.jpg", Dest: "b.jpg"},
			want:   []string{"a.jpg", "-auto-orient", "b.jpg"},
		},
		{
			name: "overlay",
			params: Params{
				Source:  "in.jpg",
				Dest:    "out.jpg",
				MaxSide: 1920,
				Overlay: &Overlay{
					Text:        "August 2020",
					Gravity:     "SouthEast",
					PointSize:   40,
					StrokeWidth: 2,
					Font:        "Liberation-Sans-Bold",
					Color:       "rgb(255,255,255)",
				},
			},
			want: []string{
				"in.jpg", "-auto-orient",
				"-resize", "1920x1920>",
				"-gravity", "SouthEast",
				"-pointsize", "40",
				"-fill", "rgb(255,255,255)",
				"-stroke", "black",
				"-strokewidth", "2",
				"-font", "Liberation-Sans-Bold",
				"-annotate", "+2+0", "August 2020",
				"out.jpg",
			},
		},
		{
			// "@name" would make the tool read the label from a file,
			// reachable through a [file_name] template on a file whose
			// name starts with "@".
			name: "leading at sign escaped",
			params: Params{
				Source: "in.jpg",
				Dest:   "out.jpg",
				Overlay: &Overlay{
					Text:        "@notes (C) Author",
					Gravity:     "SouthEast",
					PointSize:   40,
					StrokeWidth: 2,
					Font:        "Liberation-Sans-Bold",
					Color:       "rgb(255,255,255)",
				},
			},
			want: []string{
				"in.jpg", "-auto-orient",
				"-gravity", "SouthEast",
				"-pointsize", "40",
				"-fill", "rgb(255,255,255)",
				"-stroke", "black",
				"-strokewidth", "2",
				"-font", "Liberation-Sans-Bold",
				"-annotate", "+2+0", "\\@notes (C) Author",
				"out.jpg",
			},
		},
		{
			name: "empty overlay text omitted",
			params: Params{
				Source:  "in.jpg",
				Dest:    "out.jpg",
				Overlay: &Overlay{Text: "", Gravity: "SouthEast"},
			},
			want: []string{"in.jpg", "-auto-orient", "out.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertArgs(tt.params)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ConvertArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    Info
		wantErr bool
	}{
		{"landscape", "4000 3000 1", Info{Width: 4000, Height: 3000, Orientation: 1}, false},
		{"no orientation", "800 600", Info{Width: 800, Height: 600}, false},
		{"rotated", "4000 3000 6\n", Info{Width: 4000, Height: 3000, Orientation: 6}, false},
		{"junk orientation ignored", "100 200 junk", Info{Width: 100, Height: 200}, false},
		{"empty", "", Info{}, true},
		{"garbage", "no size here", Info{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInfo(tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInfo(%q) error = %v, wantErr %v", tt.out, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseInfo(%q) = %+v, want %+v", tt.out, got, tt.want)
			}
		})
	}
}

func TestInfo_Oriented(t *testing.T) {
	tests := []struct {
		name        string
		info        Info
		wantW       int
		wantH       int
	}{
		{"no orientation", Info{Width: 4000, Height: 3000}, 4000, 3000},
		{"normal", Info{Width: 4000, Height: 3000, Orientation: 1}, 4000, 3000},
		{"flipped", Info{Width: 4000, Height: 3000, Orientation: 3}, 4000, 3000},
		{"rotated 90", Info{Width: 4000, Height: 3000, Orientation: 6}, 3000, 4000},
		{"rotated 270", Info{Width: 4000, Height: 3000, Orientation: 8}, 3000, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.info.Oriented()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Oriented() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestLabelConfig_Fit(t *testing.T) {
	cfg := LabelConfig{
		Font:      "Liberation-Sans-Bold",
		Color:     "rgb(255,255,255)",
		BaseSize:  40,
		BaseSide:  1920,
		LineWidth: 60,
		MaxSide:   1920,
	}

	t.Run("calibrated size at base side", func(t *testing.T) {
		o := cfg.Fit("hello", Info{Width: 1920, Height: 1440}, "SouthEast")
		if o.PointSize != 40 {
			t.Errorf("PointSize = %d, want 40", o.PointSize)
		}
		if o.StrokeWidth != 2 {
			t.Errorf("StrokeWidth = %d, want 2", o.StrokeWidth)
		}
		if o.Gravity != "SouthEast" {
			t.Errorf("Gravity = %q, want SouthEast", o.Gravity)
		}
	})

	t.Run("large photo capped at max side", func(t *testing.T) {
		// A 6000 px photo is downscaled to 1920 before the label lands
		// on it, so the size stays at the calibrated value.
		o := cfg.Fit("hello", Info{Width: 6000, Height: 4000}, "SouthEast")
		if o.PointSize != 40 {
			t.Errorf("PointSize = %d, want 40", o.PointSize)
		}
	})

	t.Run("small photo floors at 16 with thin stroke", func(t *testing.T) {
		o := cfg.Fit("hello", Info{Width: 400, Height: 300}, "SouthEast")
		if o.PointSize != 16 {
			t.Errorf("PointSize = %d, want 16", o.PointSize)
		}
		if o.StrokeWidth != 1 {
			t.Errorf("StrokeWidth = %d, want 1", o.StrokeWidth)
		}
	})

	t.Run("portrait narrows the wrap width", func(t *testing.T) {
		long := strings.Repeat("word ", 30)
		landscape := cfg.Fit(long, Info{Width: 1920, Height: 1440}, "SouthEast")
		portrait := cfg.Fit(long, Info{Width: 1440, Height: 1920}, "SouthEast")

		if lineLen(portrait.Text) >= lineLen(landscape.Text) {
			t.Errorf("portrait longest line %d, landscape %d; want narrower portrait lines",
				lineLen(portrait.Text), lineLen(landscape.Text))
		}
	})

	t.Run("rotated portrait treated as portrait", func(t *testing.T) {
		long := strings.Repeat("word ", 30)
		stored := cfg.Fit(long, Info{Width: 1920, Height: 1440, Orientation: 6}, "SouthEast")
		upright := cfg.Fit(long, Info{Width: 1440, Height: 1920}, "SouthEast")

		if stored.Text != upright.Text {
			t.Error("orientation 6 should wrap like an upright portrait")
		}
	})
}

// lineLen returns the length of the longest line in s.
func lineLen(s string) int {
	longest := 0
	for _, line := range strings.Split(s, "\n") {
		if len(line) > longest {
			longest = len(line)
		}
	}
	return longest
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "short label", 60, "short label"},
		{"wraps", "one two three four", 9, "one two\nthree\nfour"},
		{"long word unbroken", "tiny extraordinarily-long-word end", 10, "tiny\nextraordinarily-long-word\nend"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrap(tt.text, tt.width); got != tt.want {
				t.Errorf("wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestLocate_ConfiguredMagickPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "magick")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	tool, err := Locate(LocateConfig{MagickPath: bin})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if len(tool.convert) != 2 || tool.convert[0] != bin || tool.convert[1] != "convert" {
		t.Errorf("convert argv = %v, want [%s convert]", tool.convert, bin)
	}
	if len(tool.identify) != 2 || tool.identify[1] != "identify" {
		t.Errorf("identify argv = %v, want [%s identify]", tool.identify, bin)
	}
}

func TestLocate_ConfiguredSeparatePair(t *testing.T) {
	dir := t.TempDir()
	convertBin := filepath.Join(dir, "convert")
	identifyBin := filepath.Join(dir, "identify")
	for _, bin := range []string{convertBin, identifyBin} {
		if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	tool, err := Locate(LocateConfig{ConvertPath: convertBin, IdentifyPath: identifyBin})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if len(tool.convert) != 1 || tool.convert[0] != convertBin {
		t.Errorf("convert argv = %v, want [%s]", tool.convert, convertBin)
	}
}

func TestLocate_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Locate(LocateConfig{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Locate() error = %v, want ErrNotFound", err)
	}
}

func TestLocate_BadConfiguredPath(t *testing.T) {
	_, err := Locate(LocateConfig{MagickPath: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Locate() error = %v, want ErrNotFound", err)
	}
}
