package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TIFF tag ids for the date fields the resolver reads.
const (
	tiffTagDateTime          = 0x0132
	tiffTagExifIFDPointer    = 0x8769
	tiffTagDateTimeOriginal  = 0x9003
	tiffTagDateTimeDigitized = 0x9004
)

type exifField struct {
	tag   uint16
	value string
}

// writeExifFixture builds a minimal little-endian TIFF carrying the given
// date fields and writes it to path. The EXIF decoder accepts a bare TIFF
// stream, so no JPEG container is needed. ifd0 fields land in the primary
// directory, sub fields in the Exif sub-directory reached through the
// pointer tag.
func writeExifFixture(t *testing.T, path string, ifd0, sub []exifField) {
	t.Helper()

	const (
		typeASCII = 2
		typeLong  = 4
		entrySize = 12
	)

	ifd0Count := len(ifd0)
	if len(sub) > 0 {
		ifd0Count++
	}
	ifd0Size := 2 + entrySize*ifd0Count + 4
	subOffset := 8 + ifd0Size
	subSize := 0
	if len(sub) > 0 {
		subSize = 2 + entrySize*len(sub) + 4
	}
	dataOffset := subOffset + subSize

	le := binary.LittleEndian
	buf := new(bytes.Buffer)
	var data bytes.Buffer

	writeEntry := func(f exifField) {
		binary.Write(buf, le, f.tag)
		binary.Write(buf, le, uint16(typeASCII))
		binary.Write(buf, le, uint32(len(f.value)+1))
		binary.Write(buf, le, uint32(dataOffset+data.Len()))
		data.WriteString(f.value)
		data.WriteByte(0)
	}

	buf.WriteString("II")
	binary.Write(buf, le, uint16(42))
	binary.Write(buf, le, uint32(8))

	binary.Write(buf, le, uint16(ifd0Count))
	for _, f := range ifd0 {
		writeEntry(f)
	}
	if len(sub) > 0 {
		binary.Write(buf, le, uint16(tiffTagExifIFDPointer))
		binary.Write(buf, le, uint16(typeLong))
		binary.Write(buf, le, uint32(1))
		binary.Write(buf, le, uint32(subOffset))
	}
	binary.Write(buf, le, uint32(0))

	if len(sub) > 0 {
		binary.Write(buf, le, uint16(len(sub)))
		for _, f := range sub {
			writeEntry(f)
		}
		binary.Write(buf, le, uint32(0))
	}

	buf.Write(data.Bytes())

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/photos/HAPPY_SHOT.JPG", "HAPPY_SHOT"},
		{"HAPPY_SHOT.jpg", "HAPPY_SHOT"},
		{"trip.coast.jpeg", "trip.coast"},
		{"/a/b/noext", "noext"},
		{"/a/b/.hidden", ".hidden"},
		{"archive.tar.jpg", "archive.tar"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := BaseName(tt.path); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolve_ExifPriority(t *testing.T) {
	original := exifField{tiffTagDateTimeOriginal, "2019:03:02 11:22:33"}
	digitized := exifField{tiffTagDateTimeDigitized, "2020:01:01 08:30:00"}
	modified := exifField{tiffTagDateTime, "2021:05:05 10:10:10"}

	tests := []struct {
		name string
		ifd0 []exifField
		sub  []exifField
		want time.Time
	}{
		{
			name: "original wins over digitized and modified",
			ifd0: []exifField{modified},
			sub:  []exifField{original, digitized},
			want: time.Date(2019, 3, 2, 11, 22, 33, 0, time.Local),
		},
		{
			name: "digitized wins over modified",
			ifd0: []exifField{modified},
			sub:  []exifField{digitized},
			want: time.Date(2020, 1, 1, 8, 30, 0, 0, time.Local),
		},
		{
			name: "modified is the last resort",
			ifd0: []exifField{modified},
			want: time.Date(2021, 5, 5, 10, 10, 10, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "DSC_0042.jpg")
			writeExifFixture(t, path, tt.ifd0, tt.sub)

			// The mod time must lose to any embedded timestamp.
			modTime := time.Date(2023, 12, 31, 23, 59, 59, 0, time.Local)
			if err := os.Chtimes(path, modTime, modTime); err != nil {
				t.Fatal(err)
			}

			meta := Resolve(path)

			if !meta.HasTime() {
				t.Fatal("expected a timestamp from the embedded metadata")
			}
			if !meta.CaptureTime.Equal(tt.want) {
				t.Errorf("CaptureTime = %v, want %v", meta.CaptureTime, tt.want)
			}
			if meta.FileName != "DSC_0042" {
				t.Errorf("FileName = %q, want %q", meta.FileName, "DSC_0042")
			}
		})
	}
}

func TestResolve_ModTimeFallback(t *testing.T) {
	// A JPEG without EXIF falls back to the file's modification time.
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0001.jpg")
	if err := os.WriteFile(path, []byte("not a real jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	modTime := time.Date(2020, 8, 20, 16, 33, 53, 0, time.Local)
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}

	meta := Resolve(path)

	if meta.FileName != "IMG_0001" {
		t.Errorf("FileName = %q, want %q", meta.FileName, "IMG_0001")
	}
	if !meta.HasTime() {
		t.Fatal("expected a timestamp from the mod time fallback")
	}
	if !meta.CaptureTime.Equal(modTime) {
		t.Errorf("CaptureTime = %v, want %v", meta.CaptureTime, modTime)
	}
}

func TestResolve_MissingFile(t *testing.T) {
	// Resolution never fails; a missing file yields a zero timestamp and
	// the name derived from the path.
	meta := Resolve(filepath.Join(t.TempDir(), "gone.jpg"))

	if meta.HasTime() {
		t.Errorf("CaptureTime = %v, want zero", meta.CaptureTime)
	}
	if meta.FileName != "gone" {
		t.Errorf("FileName = %q, want %q", meta.FileName, "gone")
	}
}
