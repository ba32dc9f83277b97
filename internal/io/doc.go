// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Directory creation
//   - File copying and moving
//   - Collision-free path selection
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/photos/backup")
//
//	// Move the original aside before converting in place.
//	// Safe across devices: falls back to copy-and-remove.
//	err := ioutils.MoveFile("/photos/shot.jpg", "/photos/backup/shot.jpg")
//
// # Collision Avoidance
//
// UniquePath keeps repeated runs from clobbering earlier backups:
//
//	path, err := ioutils.UniquePath("/photos/backup/shot.jpg")
//	// "/photos/backup/shot.jpg", or "/photos/backup/shot1.jpg" if taken
package ioutils
