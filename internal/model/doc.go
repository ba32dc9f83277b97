// Package model defines the core data structures used throughout
// the wikimaping application.
//
// # PhotoMetadata
//
// PhotoMetadata holds the fields a label template renders against:
//
//	meta := model.PhotoMetadata{CaptureTime: t, FileName: "HAPPY_SHOT"}
//	meta.HasTime() // false when no timestamp could be resolved
//
// # BatchRequest and ProcessingJob
//
// BatchRequest is the validated input of one batch, built once from the
// command line and immutable afterwards. ProcessingJob is the per-file
// placement decision derived from it by the conversion orchestrator:
//
//	req := &model.BatchRequest{Paths: paths, NoBackup: true}
//	// ... per file:
//	job := convert.PlanJob(entry, req)
//
// # Alignment
//
// Alignment names one of the four photo corners a label can be anchored
// to, and converts to the ImageMagick gravity for it:
//
//	a, err := model.ParseAlignment("BottomRight")
//	a.Gravity() // "SouthEast"
//
// The corner names match the --label_alignment flag values.
package model
