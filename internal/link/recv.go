package link

import (
	"strings"

	"github.com/chengmania/SimplePacketTerminal/internal/ax25"
	"github.com/chengmania/SimplePacketTerminal/internal/kissproto"
)

// recvLoop owns the transport's read side: it feeds bytes through the
// KISS extractor and dispatches complete AX.25 frames to dispatchFrame
// (spec.md §4.4, §5). It exits when the transport reports closure.
func (e *Engine) recvLoop() {
	defer e.wg.Done()
	var ex kissproto.Extractor
	for {
		select {
		case <-e.shutdown:
			return
		default:
		}

		chunk, err, timedOut := e.tp.Recv()
		if err != nil {
			select {
			case <-e.shutdown:
			default:
				e.cb.system("[LINK] Transport lost: %v", err)
			}
			return
		}
		if timedOut {
			continue
		}
		ex.Feed(chunk)
		for {
			raw, ok := ex.Next()
			if !ok {
				break
			}
			e.dispatchFrame(raw)
		}
	}
}

func (e *Engine) dispatchFrame(raw []byte) {
	frame, err := ax25.ParseFrame(raw)
	if err != nil {
		e.logger.Debug("malformed frame dropped", "err", err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch frame.Kind {
	case ax25.KindI:
		e.handleILocked(frame)
	case ax25.KindS:
		e.handleSLocked(frame)
	case ax25.KindU:
		e.handleULocked(frame)
	}
}

func (e *Engine) handleILocked(frame ax25.Frame) {
	// An I-frame arriving while AWAIT_UA is treated as an implicit UA
	// (spec.md §4.5): latch the handshake and fall through to normal
	// I-frame processing. No RR is sent ahead of the normal path
	// (spec.md §9 open question, resolved).
	if e.state == AwaitUA {
		e.state = Connected
		e.handshakeOK = true
		if e.handshakeDone != nil {
			closeOnce(e.handshakeDone)
		}
		e.mu.Unlock()
		e.cb.connected()
		e.mu.Lock()
		e.cb.system("[LINK] CONNECTED to %s (implicit)", e.peer)
		e.drainPendingLocked()
	}
	if e.state != Connected {
		return
	}

	if frame.Ns != e.vr {
		// Out-of-sequence: ACK current vr without advancing it, drop info.
		e.sendRRLocked(false, false)
		return
	}

	e.vr = (e.vr + 1) & 7
	e.sendRRLocked(false, frame.PF)

	text := decodeInfo(frame.Info)
	e.appbuf += text
	for {
		idx := strings.IndexByte(e.appbuf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(e.appbuf[:idx], " \t\r")
		e.appbuf = e.appbuf[idx+1:]
		e.emitPayloadLocked(line)
	}

	if frame.PF && e.appbuf != "" {
		peek := strings.TrimRight(e.appbuf, " \t\r\n")
		e.appbuf = ""
		if peek != "" {
			e.emitPayloadLocked(peek)
		}
	}
}

func (e *Engine) emitPayloadLocked(line string) {
	e.mu.Unlock()
	e.cb.payload(line)
	e.mu.Lock()
	e.checkPagerLocked(line)
}

// decodeInfo normalizes CRLF/CR to LF after lossy UTF-8 decoding
// (spec.md §4.5 I-frame text reassembly).
func decodeInfo(info []byte) string {
	s := strings.ToValidUTF8(string(info), "�")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

func (e *Engine) handleSLocked(frame ax25.Frame) {
	if frame.PF && frame.Command {
		// They polled us (command, P=1): answer once with a final response.
		e.sendRRLocked(false, true)
	}
}

func (e *Engine) handleULocked(frame ax25.Frame) {
	switch frame.UKind {
	case ax25.UUI:
		e.handleUILocked(frame)
	case ax25.UUA:
		e.handleUALocked()
	case ax25.UDM:
		e.handleDMLocked()
	case ax25.UFRMR:
		e.handleFRMRLocked()
	case ax25.UDISC:
		e.handleDISCLocked()
	}
}

func (e *Engine) handleUILocked(frame ax25.Frame) {
	if !e.unproto.enabled {
		return
	}
	text := decodeInfo(frame.Info)
	text = strings.TrimRight(text, " \t\r\n")
	line := "[RX UI] " + frame.Addresses.Src.String() + " > " + frame.Addresses.Dest.String() + " :: " + text
	e.emitPayloadLocked(line)
}

func (e *Engine) handleUALocked() {
	if e.handshakeDone != nil {
		closeOnce(e.handshakeDone)
	}
	if e.state != AwaitUA {
		return
	}
	e.state = Connected
	e.handshakeOK = true
	e.mu.Unlock()
	e.cb.connected()
	e.mu.Lock()
	e.cb.system("[LINK] CONNECTED to %s", e.peer)
	e.drainPendingLocked()
}

func (e *Engine) handleDMLocked() {
	if e.state == AwaitUA && !e.dmFallbackTried {
		e.dmFallbackTried = true
		e.cb.system("[LINK] Peer sent DM; retrying with SABM (v2.0)...")
		e.sendSABMLocked()
		return
	}
	e.cb.system("[LINK] Disconnected mode (DM) from peer.")
	e.state = Disconnected
	e.peer = ax25.Callsign{}
	e.appbuf = ""
	e.pending = nil
	if e.handshakeDone != nil {
		closeOnce(e.handshakeDone)
	}
}

func (e *Engine) handleFRMRLocked() {
	e.cb.system("[LINK] FRMR (frame reject) from peer.")
	if e.state == AwaitUA {
		e.sendSABMLocked()
	}
}

func (e *Engine) handleDISCLocked() {
	if e.state != Connected {
		return
	}
	e.sendUALocked(true)
	e.state = Disconnected
	e.peer = ax25.Callsign{}
	e.appbuf = ""
	e.cb.system("[LINK] Peer requested DISC - disconnected.")
}

// closeOnce closes ch if it is not already closed. Safe to call from
// the single receive goroutine; Call's handshakeDone channel is only
// ever read, never re-closed, by that goroutine.
func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}
