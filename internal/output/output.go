// Package output names and writes LRC files.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gosimple/unidecode"

	"github.com/mydehq/lrcfetch/internal/lrc"
	"github.com/mydehq/lrcfetch/internal/types"
)

var (
	placeholder = regexp.MustCompile(`\{(.+?)\}`)
	forbidden   = regexp.MustCompile(`[\\/*?:"<>|]`)
)

// Sanitize strips characters that are invalid in file names.
func Sanitize(name string) string {
	return strings.TrimSpace(forbidden.ReplaceAllString(name, ""))
}

// Format replaces {key} placeholders with values from data (unknown keys
// become empty) and sanitizes the result.
func Format(template string, data map[string]string) string {
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return data[m[1:len(m)-1]]
	})
	return Sanitize(out)
}

// TrackData returns the file-name placeholders for resp.
func TrackData(resp *types.LyricsResponse) map[string]string {
	explicit := ""
	if resp.Explicit() {
		explicit = "[E]"
	}
	return map[string]string{
		"name":         resp.Title,
		"artist":       resp.Artist,
		"album_name":   resp.Album,
		"track_number": fmt.Sprintf("%02d", resp.TrackNumber()),
		"explicit":     explicit,
	}
}

// FolderName renders an album or playlist folder template from c.
func FolderName(template string, c *types.Collection) string {
	if c == nil {
		return ""
	}
	return Format(template, map[string]string{
		"name":    c.Name,
		"artists": strings.Join(c.Artists, ", "),
		"owner":   c.Owner,
	})
}

// Options controls file naming and rendering
type Options struct {
	Dir          string
	FileTemplate string
	Force        bool
	ASCII        bool
	Synced       bool
	Enhanced     bool
}

// Result describes one write
type Result struct {
	Path    string
	Skipped bool
}

// Writer saves responses as .lrc files under Options.Dir.
type Writer struct {
	opts   Options
	logger *log.Logger
}

// NewWriter creates a Writer
func NewWriter(opts Options, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	if opts.FileTemplate == "" {
		opts.FileTemplate = "{track_number}. {name}"
	}
	return &Writer{opts: opts, logger: logger}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.opts.Dir
}

// Sub returns a writer for the named subfolder. A name that sanitizes to
// nothing or would leave the output directory (".", "..") returns w.
func (w *Writer) Sub(folder string) *Writer {
	folder = w.fileName(folder)
	if folder == "" {
		return w
	}
	if folder == "." || !filepath.IsLocal(folder) {
		w.logger.Warn("Ignoring unsafe folder name", "folder", folder)
		return w
	}
	opts := w.opts
	opts.Dir = filepath.Join(w.opts.Dir, folder)
	return &Writer{opts: opts, logger: w.logger}
}

// Exists reports whether the output directory already exists.
func (w *Writer) Exists() bool {
	info, err := os.Stat(w.opts.Dir)
	return err == nil && info.IsDir()
}

// Path returns where resp would be written.
func (w *Writer) Path(resp *types.LyricsResponse) string {
	name := w.fileName(Format(w.opts.FileTemplate, TrackData(resp)))
	if name == "" {
		name = "untitled"
	}
	return filepath.Join(w.opts.Dir, name+".lrc")
}

// Write renders and saves resp. An existing file is left alone unless
// Force is set.
func (w *Writer) Write(resp *types.LyricsResponse) (Result, error) {
	path := w.Path(resp)

	if !w.opts.Force {
		if _, err := os.Stat(path); err == nil {
			w.logger.Debug("Skipping existing file", "path", path)
			return Result{Path: path, Skipped: true}, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Result{Path: path}, err
		}
	}

	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return Result{Path: path}, fmt.Errorf("failed to create %s: %w", w.opts.Dir, err)
	}

	content := lrc.Render(w.view(resp), lrc.Options{Metadata: true, Enhanced: w.opts.Enhanced})
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Result{Path: path}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.logger.Debug("Saved lyrics", "path", path)
	return Result{Path: path}, nil
}

// view drops timing when synced output is disabled.
func (w *Writer) view(resp *types.LyricsResponse) *types.LyricsResponse {
	if w.opts.Synced || !resp.Synced {
		return resp
	}
	plain := *resp
	plain.Synced = false
	plain.RichSynced = false
	return &plain
}

func (w *Writer) fileName(name string) string {
	if w.opts.ASCII {
		name = unidecode.Unidecode(name)
	}
	return Sanitize(name)
}
