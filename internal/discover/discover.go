// Package discover expands input paths into the ordered list of image
// files a batch will process.
//
// Inputs keep their supplied order; inside a directory files are walked
// recursively in lexicographic order, so discovery over an unchanged tree
// is deterministic and repeatable. Paths supplied twice are deliberately
// not deduplicated - the file is simply processed twice.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// imageExts is the fixed set of accepted file extensions, matched
// case-insensitively.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// Entry is one discovered image file.
type Entry struct {
	// Path is the file's path as reachable from the working directory.
	Path string

	// Rel is the file's path relative to the destination folder when one
	// is set. For a file input it is the base name; for a directory input
	// it is anchored at the directory's own name, so converting
	// "Photos/Trip" into "Out" produces "Out/Trip/...". Mirrors how the
	// tool behaves when launched from a file manager.
	Rel string

	// Root is the input path the file was discovered from, cleaned. Equal
	// to Path for a file input. The placement policy uses it to put
	// in-place backups for a directory input next to the directory rather
	// than inside it.
	Root string
}

// Result is the outcome of expanding one set of input paths.
//
// Missing and Skipped are reported, not fatal: the batch continues with
// whatever was found.
type Result struct {
	// Entries are the image files to process, in order.
	Entries []Entry

	// Missing are input paths that do not exist.
	Missing []string

	// Skipped are explicitly supplied files whose extension is not an
	// accepted image type.
	Skipped []string
}

// Supported reports whether the path has an accepted image extension.
func Supported(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the accepted extensions, dot included, for messages.
func Extensions() []string {
	return []string{".jpg", ".jpeg"}
}

// Discover expands the input paths into concrete image files.
//
// A directory contributes every accepted image file beneath it. A file is
// included when its extension matches, recorded in Skipped otherwise.
// Non-existent paths land in Missing. Running twice over unchanged inputs
// yields the same ordered list.
func Discover(paths []string) Result {
	var res Result

	for _, path := range paths {
		clean := filepath.Clean(path)

		info, err := os.Stat(clean)
		if err != nil {
			res.Missing = append(res.Missing, path)
			continue
		}

		if !info.IsDir() {
			if !Supported(clean) {
				res.Skipped = append(res.Skipped, path)
				continue
			}
			res.Entries = append(res.Entries, Entry{Path: clean, Rel: filepath.Base(clean), Root: clean})
			continue
		}

		res.Entries = append(res.Entries, walkDir(clean)...)
	}

	return res
}

// walkDir collects the accepted image files under one directory input.
// filepath.WalkDir visits entries in lexicographic order, which gives the
// stable ordering discovery promises.
func walkDir(root string) []Entry {
	var entries []Entry
	base := filepath.Base(root)

	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !Supported(p) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		entries = append(entries, Entry{Path: p, Rel: filepath.Join(base, rel), Root: root})
		return nil
	})

	return entries
}
