// Package magick is the boundary to the external ImageMagick collaborator.
//
// All pixel work - resizing, compression, metadata stripping, label
// drawing - is delegated to ImageMagick as a subprocess. This package
// owns:
//
//   - Locating the installation (Locate), supporting both the IM >= 7
//     combined "magick" binary and the IM < 7 separate convert/identify
//     executables, from configured paths or PATH
//   - Building the invocation (ConvertArgs) from Params
//   - Fitting a label to an image (LabelConfig.Fit): point size, stroke
//     width and line wrapping scaled to the image dimensions
//
// # Converter
//
// The Converter interface is what the orchestrator depends on:
//
//	type Converter interface {
//	    Identify(ctx context.Context, path string) (Info, error)
//	    Convert(ctx context.Context, p Params) error
//	}
//
// Tests substitute a fake; only Tool ever spawns a process. Each
// invocation is bounded by the configured timeout and carries the tool's
// diagnostic output in its error when it fails.
package magick
