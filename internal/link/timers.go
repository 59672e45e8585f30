package link

import "time"

// keepaliveLoop originates a periodic RR poll while CONNECTED, unless
// a pager prompt is pending (spec.md §4.6): polling during a BBS pager
// interaction tends to confuse the remote end's paging state.
func (e *Engine) keepaliveLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.shutdown:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.state == Connected && !e.pagerPending {
				e.sendRRLocked(true, true)
			}
			e.mu.Unlock()
		}
	}
}
