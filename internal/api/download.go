package api

import (
	"context"
	"fmt"

	"github.com/mydehq/lrcfetch/internal/output"
	"github.com/mydehq/lrcfetch/internal/types"
)

// Report summarizes a Download. Saved and Skipped hold file paths; Failed
// holds track titles, or the URL when the whole batch failed.
type Report struct {
	Provider   string
	Op         types.FetchOp
	Collection *types.Collection
	Dir        string
	Saved      []string
	Skipped    []string
	Failed     []string
}

// Download fetches lyrics for url and writes them as .lrc files. A failing
// track is recorded and the batch continues; a failure before any track is
// fetched marks the whole URL as failed and is returned.
func (c *Client) Download(ctx context.Context, url string) (*Report, error) {
	report := &Report{}

	s, err := c.open(ctx, url)
	if err != nil {
		report.Failed = []string{url}
		return report, err
	}

	op := BatchOp(s.desc, url)
	report.Provider = s.desc.Name
	report.Op = op

	writer := c.writer()
	if op != types.OpFetch {
		report.Collection = c.collection(ctx, s)
		if folder := c.folderName(op, report.Collection); folder != "" {
			writer = writer.Sub(folder)
			if writer.Exists() {
				c.logger.Debug("Using existing folder", "dir", writer.Dir())
			}
		}
	}
	report.Dir = writer.Dir()

	c.emit(types.EventProgress, fmt.Sprintf("Fetching %s lyrics from %s", opNoun(op), s.desc.Name), report.Collection)
	responses, err := c.run(ctx, s, op)
	if err != nil {
		report.Failed = []string{url}
		return report, err
	}

	for i, resp := range responses {
		if resp == nil {
			report.Failed = append(report.Failed, fmt.Sprintf("track %d", i+1))
			continue
		}

		c.emit(types.EventProgress, fmt.Sprintf("Saving: %s", resp.Title), resp)
		res, err := writer.Write(resp)
		switch {
		case err != nil:
			c.logger.Warn("Failed to save lyrics", "title", resp.Title, "err", err)
			c.emit(types.EventWarning, fmt.Sprintf("Failed to save lyrics for %s", resp.Title), err)
			report.Failed = append(report.Failed, resp.Title)
		case res.Skipped:
			report.Skipped = append(report.Skipped, res.Path)
		default:
			report.Saved = append(report.Saved, res.Path)
		}
	}

	if len(report.Saved) > 0 {
		c.emit(types.EventSuccess, fmt.Sprintf("Saved %d lyrics to: %s", len(report.Saved), report.Dir), report)
	}
	return report, nil
}

func (c *Client) writer() *output.Writer {
	cfg := c.cfg.Get()
	dir := cfg.DownloadPath
	if c.dir != "" {
		dir = c.dir
	}
	return output.NewWriter(output.Options{
		Dir:          dir,
		FileTemplate: cfg.FileName,
		Force:        c.force || cfg.ForceDownload,
		ASCII:        cfg.ASCIIFilenames,
		Synced:       cfg.SyncedLyrics,
		Enhanced:     cfg.EnhancedLRC,
	}, c.logger)
}

// collection asks the provider to describe its album or playlist. Failure
// only costs the folder name.
func (c *Client) collection(ctx context.Context, s *session) *types.Collection {
	d, ok := s.instance.(types.CollectionDescriber)
	if !ok {
		return nil
	}
	info, err := d.CollectionInfo(ctx)
	if err != nil {
		c.logger.Debug("Could not get collection info", "provider", s.desc.Name, "err", err)
		return nil
	}
	return info
}

func (c *Client) folderName(op types.FetchOp, col *types.Collection) string {
	cfg := c.cfg.Get()
	if !cfg.CreateFolder || col == nil {
		return ""
	}
	if op == types.OpFetchPlaylist {
		return output.FolderName(cfg.PlaylistFolderName, col)
	}
	return output.FolderName(cfg.AlbumFolderName, col)
}

func opNoun(op types.FetchOp) string {
	switch op {
	case types.OpFetchAlbum:
		return "album"
	case types.OpFetchPlaylist:
		return "playlist"
	default:
		return "track"
	}
}
