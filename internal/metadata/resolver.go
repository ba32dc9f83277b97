// Package metadata resolves the photo metadata a label template renders
// against: the capture timestamp and the base file name.
//
// The timestamp policy is explicit: the embedded EXIF capture time is used
// when present, the file's modification time otherwise. Resolution never
// fails - a file with no usable timestamp at all yields metadata with a
// zero capture time, which the template renderer turns into suppressed
// date groups.
package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"wikimaping/internal/model"
)

// exifTimeLayout is the date/time layout used by EXIF string fields.
const exifTimeLayout = "2006:01:02 15:04:05"

// exifDateFields are tried in priority order.
//
// DateTimeOriginal is when the shot was taken. DateTimeDigitized is when
// the image was digitized from analog media; identical for digital photos.
// DateTime is the modification time - often broken by editors, but some
// cameras write only this tag.
var exifDateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// Resolve extracts the metadata for one photo file.
//
// The capture time comes from EXIF when readable, falling back to the
// file's modification time; when neither is available the returned
// metadata carries a zero time. The file name is the base name with the
// final extension stripped - names with interior dots keep them.
func Resolve(path string) model.PhotoMetadata {
	meta := model.PhotoMetadata{FileName: BaseName(path)}

	if t, ok := exifTime(path); ok {
		meta.CaptureTime = t
		return meta
	}

	if info, err := os.Stat(path); err == nil {
		meta.CaptureTime = info.ModTime()
	}

	return meta
}

// BaseName strips the directory and the final extension from a path.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// exifTime reads the embedded capture time from the image, trying the
// EXIF date fields in priority order.
func exifTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	for _, field := range exifDateFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(value), time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
