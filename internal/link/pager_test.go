package link

import "testing"

func TestDetectPagerPromptContinuePatterns(t *testing.T) {
	cases := []string{
		"Press <CR> to continue, <A> to abort",
		"<CR> Continue",
		"(A)bort, (CR)  continue?",
		"More (Y/N)?",
		"--More--",
		"Press any key to continue...",
	}
	for _, line := range cases {
		if !detectPagerPrompt(line, line) {
			t.Errorf("expected pager prompt match for %q", line)
		}
	}
}

func TestDetectPagerPromptNoFalsePositiveOnOrdinaryText(t *testing.T) {
	if detectPagerPrompt("hello from the BBS", "hello from the BBS") {
		t.Fatal("ordinary text should not match a pager prompt")
	}
}

func TestDetectPagerPromptMatchesAcrossTailOnly(t *testing.T) {
	// The line alone doesn't match, but the accumulated tail (spanning a
	// prior partial line) does.
	line := "continue"
	tail := "Press <CR> to " + line
	if !detectPagerPrompt(line, tail) {
		t.Fatal("expected tail-spanning match")
	}
}

func TestUpdateTailLockedCapsLength(t *testing.T) {
	e := &Engine{}
	e.updateTailLocked(string(make([]byte, pagerTailMax+100)))
	if len(e.pagerTail) != pagerTailMax {
		t.Fatalf("want tail capped at %d, got %d", pagerTailMax, len(e.pagerTail))
	}
}

func TestCheckPagerLockedSetsPendingAndNeverClearsItself(t *testing.T) {
	e := &Engine{}
	e.checkPagerLocked("ordinary line")
	if e.pagerPending {
		t.Fatal("ordinary line must not set pagerPending")
	}
	e.checkPagerLocked("Press <CR> to continue")
	if !e.pagerPending {
		t.Fatal("expected pagerPending to be set")
	}
	e.checkPagerLocked("another ordinary line")
	if !e.pagerPending {
		t.Fatal("checkPagerLocked must never clear pagerPending itself")
	}
}
