package magick

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound reports that no usable ImageMagick installation could be
// located. It is the one fatal condition of a batch: without the external
// tool no file can be processed at all.
var ErrNotFound = errors.New("ImageMagick not found")

// Info holds the image parameters identify reports.
type Info struct {
	Width  int
	Height int

	// Orientation is the raw EXIF orientation value (1-8), 0 when the
	// image carries none.
	Orientation int
}

// Oriented returns width and height as they will appear after
// -auto-orient. EXIF orientations 5-8 rotate by 90 degrees and swap the
// two sides.
func (i Info) Oriented() (width, height int) {
	if i.Orientation >= 5 && i.Orientation <= 8 {
		return i.Height, i.Width
	}
	return i.Width, i.Height
}

// Overlay describes a fitted text label ready to be annotated onto an
// image.
type Overlay struct {
	// Text is the label, possibly wrapped onto several lines.
	Text string

	// Gravity is the ImageMagick gravity naming the anchor corner.
	Gravity string

	// PointSize and StrokeWidth are scaled to the image dimensions.
	PointSize   int
	StrokeWidth int

	Font  string
	Color string
}

// Params is the contract of one conversion call: source in, replacement
// image out, everything else a knob.
type Params struct {
	Source string
	Dest   string

	// MaxSide caps the long side in pixels; smaller images are left
	// unscaled. 0 disables resizing.
	MaxSide int

	// Quality is the JPEG quality percentage. 0 keeps the tool default.
	Quality int

	// MaxOutputKB caps the output file size. 0 disables the cap.
	MaxOutputKB int

	// Strip removes all embedded metadata from the output.
	Strip bool

	// Overlay is the optional text label. Nil or empty text means no
	// overlay arguments are emitted.
	Overlay *Overlay
}

// Converter is the capability the orchestrator needs from the external
// image-processing collaborator. The exec-backed Tool implements it; tests
// substitute fakes so no real process is ever spawned.
type Converter interface {
	// Identify reports the dimensions and EXIF orientation of an image.
	Identify(ctx context.Context, path string) (Info, error)

	// Convert runs one conversion, writing the replacement image to
	// p.Dest. A non-zero exit becomes an error carrying the tool's
	// diagnostic output.
	Convert(ctx context.Context, p Params) error
}

// LocateConfig carries the configured executable locations.
type LocateConfig struct {
	// MagickPath is the combined IM >= 7 binary.
	MagickPath string

	// ConvertPath and IdentifyPath are the separate IM < 7 executables.
	ConvertPath  string
	IdentifyPath string

	// Timeout bounds each invocation. 0 disables the bound.
	Timeout time.Duration
}

// Tool drives an ImageMagick installation as a subprocess.
//
// Two incompatible major versions exist: IM >= 7 ships one "magick" binary
// with convert/identify subcommands, IM < 7 ships separate executables.
// Tool hides the difference behind prepared argv prefixes.
type Tool struct {
	convert  []string
	identify []string
	timeout  time.Duration
}

// Locate finds a usable ImageMagick installation.
//
// Explicitly configured paths win; otherwise PATH is searched for the IM7
// "magick" binary first and the IM6 convert/identify pair second. Returns
// an error wrapping ErrNotFound when nothing usable exists.
func Locate(cfg LocateConfig) (*Tool, error) {
	if cfg.MagickPath != "" {
		if _, err := os.Stat(cfg.MagickPath); err != nil {
			return nil, fmt.Errorf("%w: configured magick path %q: %v", ErrNotFound, cfg.MagickPath, err)
		}
		return &Tool{
			convert:  []string{cfg.MagickPath, "convert"},
			identify: []string{cfg.MagickPath, "identify"},
			timeout:  cfg.Timeout,
		}, nil
	}

	if cfg.ConvertPath != "" || cfg.IdentifyPath != "" {
		convertPath, err := resolveExecutable(cfg.ConvertPath, "convert")
		if err != nil {
			return nil, err
		}
		identifyPath, err := resolveExecutable(cfg.IdentifyPath, "identify")
		if err != nil {
			return nil, err
		}
		return &Tool{
			convert:  []string{convertPath},
			identify: []string{identifyPath},
			timeout:  cfg.Timeout,
		}, nil
	}

	if path, err := exec.LookPath("magick"); err == nil {
		return &Tool{
			convert:  []string{path, "convert"},
			identify: []string{path, "identify"},
			timeout:  cfg.Timeout,
		}, nil
	}

	convertPath, errConvert := exec.LookPath("convert")
	identifyPath, errIdentify := exec.LookPath("identify")
	if errConvert != nil || errIdentify != nil {
		return nil, fmt.Errorf("%w: no \"magick\" binary and no \"convert\"/\"identify\" pair on PATH; "+
			"set magick_path or convert_path/identify_path in the settings file", ErrNotFound)
	}

	return &Tool{
		convert:  []string{convertPath},
		identify: []string{identifyPath},
		timeout:  cfg.Timeout,
	}, nil
}

// resolveExecutable returns the configured path when set and existing,
// otherwise looks the fallback name up on PATH.
func resolveExecutable(configured, fallback string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("%w: configured path %q: %v", ErrNotFound, configured, err)
		}
		return configured, nil
	}
	path, err := exec.LookPath(fallback)
	if err != nil {
		return "", fmt.Errorf("%w: %q not on PATH", ErrNotFound, fallback)
	}
	return path, nil
}

// Identify implements Converter.
func (t *Tool) Identify(ctx context.Context, path string) (Info, error) {
	out, err := t.run(ctx, t.identify, "-format", "%w %h %[EXIF:Orientation]", path)
	if err != nil {
		return Info{}, fmt.Errorf("identify %s: %w", filepath.Base(path), err)
	}
	info, err := parseInfo(out)
	if err != nil {
		return Info{}, fmt.Errorf("identify %s: %w", filepath.Base(path), err)
	}
	return info, nil
}

// Convert implements Converter.
func (t *Tool) Convert(ctx context.Context, p Params) error {
	if _, err := t.run(ctx, t.convert, ConvertArgs(p)...); err != nil {
		return fmt.Errorf("convert %s: %w", filepath.Base(p.Source), err)
	}
	return nil
}

// run executes one prepared command, applying the configured timeout and
// folding any diagnostic output into the returned error.
func (t *Tool) run(ctx context.Context, argv []string, args ...string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], append(append([]string{}, argv[1:]...), args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if diag := strings.TrimSpace(string(out)); diag != "" {
			return "", fmt.Errorf("%v: %s", err, diag)
		}
		return "", err
	}
	return string(out), nil
}

// ConvertArgs builds the convert argument list for one conversion.
//
// The resize geometry uses the ">" suffix so only images larger than the
// cap are scaled down; the orientation question disappears because both
// sides share the cap.
func ConvertArgs(p Params) []string {
	args := []string{p.Source, "-auto-orient"}

	if p.MaxSide > 0 {
		args = append(args, "-resize", fmt.Sprintf("%dx%d>", p.MaxSide, p.MaxSide))
	}
	if p.Quality > 0 {
		args = append(args, "-quality", strconv.Itoa(p.Quality))
	}
	if p.Strip {
		args = append(args, "-strip")
	}
	if p.MaxOutputKB > 0 {
		args = append(args, "-define", fmt.Sprintf("jpeg:extent=%dKB", p.MaxOutputKB))
	}

	if o := p.Overlay; o != nil && o.Text != "" {
		text := o.Text
		// A leading "@" would make the tool read the label from a file
		// of that name; "\@" renders the character literally.
		if strings.HasPrefix(text, "@") {
			text = "\\" + text
		}
		args = append(args,
			"-gravity", o.Gravity,
			"-pointsize", strconv.Itoa(o.PointSize),
			"-fill", o.Color,
			"-stroke", "black",
			"-strokewidth", strconv.Itoa(o.StrokeWidth),
			"-font", o.Font,
			"-annotate", "+2+0", text,
		)
	}

	return append(args, p.Dest)
}

// parseInfo parses the "-format %w %h %[EXIF:Orientation]" output.
// The orientation field may be absent.
func parseInfo(out string) (Info, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return Info{}, fmt.Errorf("unexpected identify output %q", strings.TrimSpace(out))
	}

	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return Info{}, fmt.Errorf("bad width in identify output %q", strings.TrimSpace(out))
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return Info{}, fmt.Errorf("bad height in identify output %q", strings.TrimSpace(out))
	}

	info := Info{Width: width, Height: height}
	if len(fields) >= 3 {
		if o, err := strconv.Atoi(fields[2]); err == nil && o >= 1 && o <= 8 {
			info.Orientation = o
		}
	}

	return info, nil
}
