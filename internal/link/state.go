package link

import (
	"strings"
	"time"

	"github.com/chengmania/SimplePacketTerminal/internal/ax25"
	"github.com/chengmania/SimplePacketTerminal/internal/kissproto"
)

// State is one of the three link states of spec.md §3.
type State int

const (
	Disconnected State = iota
	AwaitUA
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case AwaitUA:
		return "AWAIT_UA"
	case Connected:
		return "CONNECTED"
	default:
		return "?"
	}
}

// Call initiates a handshake with peer over digis, blocking for up to
// Retries * RetryWait while probes are sent (spec.md §4.5, §4.6).
// It never returns an error: failure is reported via OnSystem and
// observable afterwards through Status().State == Disconnected.
func (e *Engine) Call(peer ax25.Callsign, digis []ax25.Callsign) {
	e.mu.Lock()
	e.peer = peer
	e.digipath = digis
	e.vs, e.vr = 0, 0
	e.state = AwaitUA
	e.dmFallbackTried = false
	e.pending = nil
	e.handshakeOK = false
	done := make(chan struct{})
	e.handshakeDone = done
	retries := e.retries
	retryWait := e.retryWait
	e.mu.Unlock()

	for attempt := 1; attempt <= retries; attempt++ {
		probe := "SABME"
		e.mu.Lock()
		if attempt == 1 {
			e.sendSABMELocked()
		} else {
			probe = "SABM"
			e.sendSABMLocked()
		}
		via := ""
		if len(digis) > 0 {
			via = " via " + joinCallsigns(digis)
		}
		e.mu.Unlock()
		e.cb.system("[LINK] Calling %s%s (attempt %d/%d, %s) ...", peer, via, attempt, retries, probe)

		select {
		case <-done:
			return
		case <-e.shutdown:
			return
		case <-time.After(retryWait):
		}
	}

	e.mu.Lock()
	settled := e.handshakeOK
	if !settled && e.state == AwaitUA {
		e.state = Disconnected
		e.peer = ax25.Callsign{}
	}
	e.mu.Unlock()
	if !settled {
		e.cb.system("[LINK] No response. Giving up.")
	}
}

// Disconnect sends a graceful DISC when connected and always returns
// the link to DISCONNECTED. It never fails (spec.md §4.9).
func (e *Engine) Disconnect() {
	e.mu.Lock()
	wasConnected := e.state == Connected
	if wasConnected {
		e.sendDISCLocked()
	}
	e.state = Disconnected
	e.peer = ax25.Callsign{}
	e.appbuf = ""
	e.pending = nil
	e.mu.Unlock()
	e.cb.system("[LINK] Disconnected.")
}

// SendText sends one line of text. If unproto mode is enabled it is
// sent as a UI frame; otherwise, if CONNECTED, as an I-frame; if not
// yet connected (AWAIT_UA) it is queued (spec.md §4.7) and sent once
// the handshake completes.
func (e *Engine) SendText(line string) {
	e.mu.Lock()
	echo := e.localEcho

	switch {
	case e.unproto.enabled:
		e.sendUILocked(e.unproto.dest, e.unproto.digis, []byte(line))
	case e.state != Connected:
		e.pending = append(e.pending, line)
	default:
		wire := line + e.txNewline.bytes()
		e.sendILocked([]byte(wire))
	}
	e.mu.Unlock()

	if echo {
		e.cb.system("> %s", line)
	}
}

// SendUnproto emits a single UI frame regardless of link state
// (spec.md §4.9).
func (e *Engine) SendUnproto(dest ax25.Callsign, message string, digis []ax25.Callsign) {
	e.mu.Lock()
	e.sendUILocked(dest, digis, []byte(message))
	e.mu.Unlock()
	via := ""
	if len(digis) > 0 {
		via = " via " + joinCallsigns(digis)
	}
	e.cb.system("[UNPROTO] %s%s :: %s", dest, via, message)
}

// PagerContinue answers a detected pager prompt by sending an empty
// line and clearing the pending flag (spec.md §4.8).
func (e *Engine) PagerContinue() {
	e.mu.Lock()
	pending := e.pagerPending
	e.pagerPending = false
	e.mu.Unlock()
	if pending {
		e.SendText("")
	}
}

// PagerAbort answers a detected pager prompt by sending "A" and
// clearing the pending flag.
func (e *Engine) PagerAbort() {
	e.mu.Lock()
	pending := e.pagerPending
	e.pagerPending = false
	e.mu.Unlock()
	if pending {
		e.SendText("A")
	}
}

// ---- internal send helpers (caller must hold e.mu) ----

func (e *Engine) sendRaw(raw []byte) {
	frame := kissproto.WrapData(0, raw)
	if err := e.tp.Send(frame); err != nil {
		e.logger.Error("transport send failed", "err", err)
	}
}

func (e *Engine) sendSABMLocked() {
	e.sendRaw(ax25.BuildUFrame(e.peer, e.mycall, e.digipath, ax25.USABM, true, true))
}

func (e *Engine) sendSABMELocked() {
	e.sendRaw(ax25.BuildUFrame(e.peer, e.mycall, e.digipath, ax25.USABME, true, true))
}

func (e *Engine) sendDISCLocked() {
	e.sendRaw(ax25.BuildUFrame(e.peer, e.mycall, e.digipath, ax25.UDISC, true, true))
}

func (e *Engine) sendUALocked(final bool) {
	e.sendRaw(ax25.BuildUFrame(e.peer, e.mycall, e.digipath, ax25.UUA, false, final))
}

// sendRRLocked replies with RR carrying N(r)=vr; cmd selects poll
// (command) vs answer (response) orientation.
func (e *Engine) sendRRLocked(cmd, pf bool) {
	e.sendRaw(ax25.BuildSFrame(e.peer, e.mycall, e.digipath, ax25.SRR, e.vr, cmd, pf))
}

func (e *Engine) sendILocked(info []byte) {
	e.sendRaw(ax25.BuildIFrame(e.peer, e.mycall, e.digipath, e.vs, e.vr, false, info))
	e.vs = (e.vs + 1) & 7
}

func (e *Engine) sendUILocked(dest ax25.Callsign, digis []ax25.Callsign, info []byte) {
	e.sendRaw(ax25.BuildUIFrame(dest, e.mycall, digis, info))
}

func joinCallsigns(cs []ax25.Callsign) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
