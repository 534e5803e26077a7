// Package lrc renders lyrics as LRC (and Enhanced LRC) text and parses
// timed LRC text back into lines.
package lrc

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Options controls Render
type Options struct {
	// Metadata adds [ti:], [al:], [ar:] and [length:] headers
	Metadata bool
	// Enhanced writes <mm:ss.xx> word stamps for rich-synced lyrics
	Enhanced bool
}

// Render formats resp as LRC. Untimed lines, and every line of an unsynced
// response, are written verbatim.
func Render(resp *types.LyricsResponse, opts Options) string {
	var lines []string

	if opts.Metadata {
		lines = append(lines, fmt.Sprintf("[ti:%s]", resp.Title))
		if resp.Album != "" {
			lines = append(lines, fmt.Sprintf("[al:%s]", resp.Album))
		}
		lines = append(lines, fmt.Sprintf("[ar:%s]", resp.Artist))
		if resp.DurationMs > 0 {
			lines = append(lines, fmt.Sprintf("[length:%s]", Timestamp(resp.DurationMs)))
		}
	}

	for _, l := range resp.Lines {
		if !resp.Synced || !l.Timed() {
			lines = append(lines, l.Text)
			continue
		}

		stamp := "[" + Timestamp(*l.StartMs) + "]"
		if opts.Enhanced && resp.RichSynced && len(l.Words) > 0 {
			words := make([]string, len(l.Words))
			for i, w := range l.Words {
				words[i] = "<" + Timestamp(w.StartMs) + ">" + w.Word
			}
			lines = append(lines, stamp+" "+strings.Join(words, " "))
			continue
		}
		lines = append(lines, stamp+" "+l.Text)
	}

	return strings.Join(lines, "\n")
}

// Timestamp formats ms as mm:ss.xx.
func Timestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := float64(ms%60000) / 1000
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}

var (
	lineStamp = regexp.MustCompile(`^\[(\d+):(\d{1,2})(?:[.:](\d{1,3}))?\]`)
	wordStamp = regexp.MustCompile(`<(\d+):(\d{1,2})(?:[.:](\d{1,3}))?>`)
	tagLine   = regexp.MustCompile(`^\[[a-zA-Z#]+:.*\]$`)
)

// Parse reads LRC text into lines ordered by start time. A line may carry
// several leading stamps and yields one entry per stamp. Header tags and
// blank lines are dropped; text without a stamp is kept untimed, after the
// timed lines.
func Parse(text string) []types.LyricsLine {
	var timed, untimed []types.LyricsLine

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		var starts []int64
		rest := raw
		for {
			m := lineStamp.FindStringSubmatch(rest)
			if m == nil {
				break
			}
			starts = append(starts, toMillis(m[1], m[2], m[3]))
			rest = rest[len(m[0]):]
		}

		if len(starts) == 0 {
			if tagLine.MatchString(raw) {
				continue
			}
			untimed = append(untimed, types.LyricsLine{Text: raw})
			continue
		}

		body := strings.TrimSpace(rest)
		words := parseWords(body)
		if len(words) > 0 {
			body = plainText(words)
		}

		for _, start := range starts {
			start := start
			timed = append(timed, types.LyricsLine{Text: body, StartMs: &start, Words: words})
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return *timed[i].StartMs < *timed[j].StartMs
	})

	for i := range timed {
		if i+1 < len(timed) {
			end := *timed[i+1].StartMs
			timed[i].EndMs = &end
		}
	}

	return append(timed, untimed...)
}

// IsSynced reports whether any parsed line carries a timestamp.
func IsSynced(lines []types.LyricsLine) bool {
	for _, l := range lines {
		if l.Timed() {
			return true
		}
	}
	return false
}

func parseWords(body string) []types.LyricsWord {
	locs := wordStamp.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return nil
	}

	words := make([]types.LyricsWord, 0, len(locs))
	for i, loc := range locs {
		start := toMillis(body[loc[2]:loc[3]], body[loc[4]:loc[5]], submatch(body, loc, 6))
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		word := strings.TrimSpace(body[loc[1]:end])
		words = append(words, types.LyricsWord{Word: word, StartMs: start, EndMs: start})
	}

	for i := range words {
		if i+1 < len(words) {
			words[i].EndMs = words[i+1].StartMs
		}
	}
	return words
}

func plainText(words []types.LyricsWord) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w.Word != "" {
			parts = append(parts, w.Word)
		}
	}
	return strings.Join(parts, " ")
}

func submatch(s string, loc []int, i int) string {
	if loc[i] < 0 {
		return ""
	}
	return s[loc[i]:loc[i+1]]
}

// toMillis converts minute, second and fraction fields. A two-digit
// fraction is hundredths; three digits are milliseconds.
func toMillis(min, sec, frac string) int64 {
	m, _ := strconv.ParseInt(min, 10, 64)
	s, _ := strconv.ParseInt(sec, 10, 64)
	ms := (m*60 + s) * 1000

	switch len(frac) {
	case 1:
		f, _ := strconv.ParseInt(frac, 10, 64)
		ms += f * 100
	case 2:
		f, _ := strconv.ParseInt(frac, 10, 64)
		ms += f * 10
	case 3:
		f, _ := strconv.ParseInt(frac, 10, 64)
		ms += f
	}
	return ms
}
