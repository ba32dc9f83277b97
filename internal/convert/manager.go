package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"wikimaping/internal/config"
	"wikimaping/internal/discover"
	ioutils "wikimaping/internal/io"
	"wikimaping/internal/label"
	"wikimaping/internal/magick"
	"wikimaping/internal/metadata"
	"wikimaping/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a batch progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// backupDirName names the folder originals are moved into when
// converting in place.
const backupDirName = "backup"

// PlanJob applies the placement policy to one discovered file.
//
// The policy is a pure function of the request:
//
//   - destination set: output goes under the destination folder, the
//     original stays untouched, no backup needed
//   - in place, backups on (default): the original is moved to a backup
//     location first, the output replaces it at the original path
//   - in place, --nobackup: the original is overwritten, nothing kept
func PlanJob(entry discover.Entry, req *model.BatchRequest) model.ProcessingJob {
	job := model.ProcessingJob{Source: entry.Path, Alignment: req.Alignment}

	switch {
	case req.Destination != "":
		job.Dest = filepath.Join(req.Destination, entry.Rel)
	case req.NoBackup:
		job.Dest = entry.Path
	default:
		job.Dest = entry.Path
		job.Backup = backupPath(entry)
	}

	return job
}

// backupPath places the backup for one in-place conversion.
//
// For a directory input the backups mirror the subtree under a sibling
// "<name>_backup" folder, outside the converted tree, so a later run over
// the same directory never re-converts saved originals and no folder
// inside the tree is shadowed by a reserved name. For a file input the
// backup goes into a "backup" folder next to the file.
func backupPath(entry discover.Entry) string {
	if entry.Root != "" && entry.Root != entry.Path {
		if rel, err := filepath.Rel(entry.Root, entry.Path); err == nil {
			root := filepath.Join(filepath.Dir(entry.Root), filepath.Base(entry.Root)+"_"+backupDirName)
			return filepath.Join(root, rel)
		}
	}
	return filepath.Join(filepath.Dir(entry.Path), backupDirName, filepath.Base(entry.Path))
}

// Outcome is the per-file result surfaced in the batch summary.
type Outcome struct {
	Source string
	Dest   string
	Err    error
}

// Summary aggregates one batch run. Failures never silently disappear:
// every failed file, missing input and skipped file is listed.
type Summary struct {
	Found     int
	Converted int
	Failed    int

	Missing []string
	Skipped []string

	Outcomes []Outcome
	Elapsed  time.Duration
}

// Problems counts everything that should make the exit status non-zero.
func (s *Summary) Problems() int {
	return s.Failed + len(s.Missing) + len(s.Skipped)
}

// Manager coordinates one conversion batch.
//
// Files are processed strictly one at a time, in discovery order: the
// external tool saturates the machine on its own, and overlapping
// invocations must never race on backup state. Per-file failures are
// reported and the batch continues; only a missing external tool aborts a
// run, and that is detected before a Manager exists.
type Manager struct {
	settings  *config.Settings
	converter magick.Converter
	request   *model.BatchRequest
	template  *label.Template
	labelCfg  magick.LabelConfig

	totalFiles int32
	doneFiles  int32

	createdDirs []string

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a Manager for one batch.
//
// The label template is parsed once here; parsing never fails, so the only
// error is a destination path that exists and is not a folder. converter
// may be nil for a dry run.
func NewManager(settings *config.Settings, converter magick.Converter, request *model.BatchRequest, onProgress func(ProgressEvent)) (*Manager, error) {
	if request.Destination != "" {
		if info, err := os.Stat(request.Destination); err == nil && !info.IsDir() {
			return nil, fmt.Errorf("destination is not a folder: %s", request.Destination)
		}
	}

	m := &Manager{
		settings:   settings,
		converter:  converter,
		request:    request,
		labelCfg:   settings.ToLabelConfig(),
		onProgress: onProgress,
	}
	if request.LabelTemplate != "" {
		m.template = label.Parse(request.LabelTemplate)
	}

	return m, nil
}

// Run discovers the inputs and converts them one by one.
//
// The returned error is non-nil only when the context was cancelled; all
// per-file trouble lives in the Summary. On cancellation the summary
// covers the files processed so far and the current file has either
// reverted its backup or completed.
func (m *Manager) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	res := discover.Discover(m.request.Paths)
	summary := &Summary{
		Found:   len(res.Entries),
		Missing: res.Missing,
		Skipped: res.Skipped,
	}

	for _, path := range res.Missing {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Source not found: %s", path), Level: LevelError})
	}
	for _, path := range res.Skipped {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Unsupported file type: %s (accepted: %v)", path, discover.Extensions()), Level: LevelWarning})
	}

	if len(res.Entries) == 0 {
		if len(res.Missing) == 0 && len(res.Skipped) == 0 {
			m.progress(ProgressEvent{Message: "Supported images not found", Level: LevelWarning})
		}
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	atomic.StoreInt32(&m.totalFiles, int32(len(res.Entries)))

	if m.request.DryRun {
		m.dryRun(res.Entries)
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1) // conversions must not overlap

	for _, entry := range res.Entries {
		entry := entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome := m.processFile(gctx, entry)
			if cause := gctx.Err(); cause != nil && errors.Is(outcome.Err, cause) {
				return cause
			}

			m.mu.Lock()
			summary.Outcomes = append(summary.Outcomes, outcome)
			if outcome.Err != nil {
				summary.Failed++
			} else {
				summary.Converted++
			}
			m.mu.Unlock()
			atomic.AddInt32(&m.doneFiles, 1)

			return gctx.Err()
		})
	}

	err := g.Wait()
	m.removeEmptyCreatedDirs()
	summary.Elapsed = time.Since(start)

	return summary, err
}

// GetProgress returns the number of processed and total files.
func (m *Manager) GetProgress() (done, total int32) {
	return atomic.LoadInt32(&m.doneFiles), atomic.LoadInt32(&m.totalFiles)
}

// dryRun reports the planned work without touching anything.
func (m *Manager) dryRun(entries []discover.Entry) {
	for _, entry := range entries {
		job := PlanJob(entry, m.request)

		msg := fmt.Sprintf("Would convert %s -> %s", job.Source, job.Dest)
		if job.Source == job.Dest {
			msg = fmt.Sprintf("Would convert %s in place", job.Source)
		}
		if job.Backup != "" {
			msg += fmt.Sprintf(" (backup in %s)", filepath.Dir(job.Backup))
		}
		if m.template != nil {
			msg += fmt.Sprintf(", label %q", m.template.Render(metadata.Resolve(job.Source)))
		}

		m.progress(ProgressEvent{Message: msg, Level: LevelInfo})
		atomic.AddInt32(&m.doneFiles, 1)
	}
}

// processFile converts a single file, bracketing the external call with
// the backup move so that the original either stays intact or is fully
// replaced - never a renamed-away original next to a half-written output.
func (m *Manager) processFile(ctx context.Context, entry discover.Entry) Outcome {
	job := PlanJob(entry, m.request)
	outcome := Outcome{Source: job.Source, Dest: job.Dest}

	if m.request.Destination != "" && filepath.Dir(filepath.Clean(job.Dest)) == filepath.Dir(job.Source) {
		outcome.Err = fmt.Errorf("source and destination are the same: %s (to replace a file in place, drop --destination and use --nobackup)", job.Source)
		m.progress(ProgressEvent{Message: outcome.Err.Error(), Level: LevelError})
		return outcome
	}

	if m.template != nil {
		job.Label = m.template.Render(metadata.Resolve(job.Source))
	}

	params := magick.Params{
		Source:      job.Source,
		Dest:        job.Dest,
		MaxSide:     m.settings.MaxSide,
		Quality:     m.settings.Quality,
		MaxOutputKB: m.settings.MaxOutputKB,
		Strip:       m.settings.StripMetadata,
	}

	if job.Label != "" {
		info, err := m.converter.Identify(ctx, job.Source)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Can't read image size of %s, using calibrated label size: %v", job.Source, err), Level: LevelWarning})
			info = magick.Info{}
		}
		overlay := m.labelCfg.Fit(job.Label, info, job.Alignment.Gravity())
		params.Overlay = &overlay
	}

	if dir := filepath.Dir(job.Dest); job.Dest != job.Source {
		if err := m.ensureDir(dir); err != nil {
			outcome.Err = fmt.Errorf("can't create destination folder %s: %w", dir, err)
			m.progress(ProgressEvent{Message: outcome.Err.Error(), Level: LevelError})
			return outcome
		}
	}

	// Move the original aside first when a backup is wanted. A failed
	// move fails the file: converting over an original we could not
	// back up would defeat the point of the backup.
	backupPath := ""
	if job.Backup != "" {
		if err := m.ensureDir(filepath.Dir(job.Backup)); err != nil {
			outcome.Err = fmt.Errorf("can't create backup folder: %w", err)
			m.progress(ProgressEvent{Message: outcome.Err.Error(), Level: LevelError})
			return outcome
		}

		unique, err := ioutils.UniquePath(job.Backup)
		if err == nil {
			err = ioutils.MoveFile(job.Source, unique)
		}
		if err != nil {
			outcome.Err = fmt.Errorf("can't move original to backup: %w", err)
			m.progress(ProgressEvent{Message: outcome.Err.Error(), Level: LevelError})
			return outcome
		}

		backupPath = unique
		params.Source = backupPath
	}

	if err := m.converter.Convert(ctx, params); err != nil {
		if backupPath != "" {
			if revertErr := ioutils.MoveFile(backupPath, job.Source); revertErr != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Can't revert %s from backup %s: %v", job.Source, backupPath, revertErr), Level: LevelError})
			}
		}
		// A batch-wide cancellation is not this file's fault: the
		// original is back in place and the interrupt surfaces from Run.
		// A per-invocation timeout still counts as a real failure.
		if cause := ctx.Err(); cause != nil && errors.Is(err, cause) {
			outcome.Err = cause
			m.progress(ProgressEvent{Message: fmt.Sprintf("Interrupted, original restored: %s", entry.Rel), Level: LevelVerbose})
			return outcome
		}
		outcome.Err = err
		m.progress(ProgressEvent{Message: fmt.Sprintf("Conversion failed: %v", err), Level: LevelError})
		return outcome
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Converted: %s", entry.Rel), Level: LevelSuccess})
	return outcome
}

// ensureDir creates dir, remembering every directory that did not exist
// before so useless empties can be removed at the end of the run.
func (m *Manager) ensureDir(dir string) error {
	var missing []string
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if d == filepath.Dir(d) {
			break
		}
	}

	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}

	m.mu.Lock()
	m.createdDirs = append(m.createdDirs, missing...)
	m.mu.Unlock()
	return nil
}

// removeEmptyCreatedDirs deletes directories this run created that ended
// up empty (e.g. a backup folder whose only candidate file failed).
// Deepest first, so nested empties collapse; non-empty ones survive
// because os.Remove refuses them.
func (m *Manager) removeEmptyCreatedDirs() {
	m.mu.Lock()
	dirs := append([]string(nil), m.createdDirs...)
	m.mu.Unlock()

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		os.Remove(dir)
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
