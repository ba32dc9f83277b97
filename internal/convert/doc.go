// Package convert runs the batch pipeline: discover inputs, plan where
// each output goes, keep or skip backups, and drive the external tool one
// file at a time. Per-file errors are collected in the run summary; the
// batch keeps going.
package convert
