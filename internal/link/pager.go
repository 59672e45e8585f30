package link

import (
	"regexp"
	"strings"
)

// pagerPatterns match common BBS "continue / abort" prompts,
// case-insensitively, spanning the rolling tail buffer. Ported
// verbatim (as regexes) from the Python original's PROMPT_PATTERNS.
var pagerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is).*<\s*CR\s*>.*continue.*`),
	regexp.MustCompile(`(?is).*press.*<\s*CR\s*>.*continue.*`),
	regexp.MustCompile(`(?is).*<\s*A\s*>.*abort.*<\s*CR\s*>.*continue.*`),
	regexp.MustCompile(`(?is).*\(A\)bort.*\(CR\).*continue.*`),
	regexp.MustCompile(`(?i).*more\s*\(y/n\).*`),
	regexp.MustCompile(`(?i).*--more--.*`),
	regexp.MustCompile(`(?i).*press any key.*`),
}

// detectPagerPrompt is a pure function (spec.md §4.8, §4.9 design
// notes): given the most recently emitted line and the current rolling
// tail (already including that line), it reports whether a pager
// prompt pattern matched either the line alone or the tail as a whole.
func detectPagerPrompt(line, tail string) bool {
	if s := strings.TrimSpace(line); s != "" {
		for _, p := range pagerPatterns {
			if p.MatchString(s) {
				return true
			}
		}
	}
	if s := strings.TrimSpace(tail); s != "" {
		for _, p := range pagerPatterns {
			if p.MatchString(s) {
				return true
			}
		}
	}
	return false
}

// updateTailLocked appends s to the rolling pager-detection tail,
// capping it at pagerTailMax characters (spec.md §4.8).
func (e *Engine) updateTailLocked(s string) {
	if s == "" {
		return
	}
	combined := e.pagerTail + s
	if len(combined) > pagerTailMax {
		combined = combined[len(combined)-pagerTailMax:]
	}
	e.pagerTail = combined
}

// checkPagerLocked updates the tail with line and, on a match, sets
// pagerPending. It never clears pagerPending: only PagerContinue and
// PagerAbort do that, avoiding races with interleaved banners
// (spec.md §4.8).
func (e *Engine) checkPagerLocked(line string) {
	e.updateTailLocked(line)
	if detectPagerPrompt(line, e.pagerTail) {
		e.pagerPending = true
	}
}
