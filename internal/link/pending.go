package link

// drainPendingLocked sends every line queued during AWAIT_UA in FIFO
// order (spec.md §4.7). Caller must hold e.mu; drainPendingLocked
// releases it around each SendText call since SendText itself locks,
// and re-acquires before returning so the caller's deferred Unlock
// still balances.
func (e *Engine) drainPendingLocked() {
	if len(e.pending) == 0 {
		return
	}
	lines := e.pending
	e.pending = nil
	e.mu.Unlock()
	e.cb.system("[LINK] Flushing %d queued line(s) after connect ...", len(lines))
	for _, line := range lines {
		e.SendText(line)
	}
	e.mu.Lock()
}
