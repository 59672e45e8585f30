package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/chengmania/SimplePacketTerminal/internal/ax25"
	"github.com/chengmania/SimplePacketTerminal/internal/link"
	"github.com/chengmania/SimplePacketTerminal/internal/transport"
)

const help = `Commands:
  /c | /connect CALL [via DIGI1,DIGI2]   Connect (AX.25)
  /d | /disconnect                       Disconnect
  /unproto DEST [via DIGI1,DIGI2] [msg]  Send UI frame; no msg -> enter unproto mode
  /upexit                                Exit unproto mode
  /echo on|off                           Local echo
  /crlf on|off                           Send CRLF instead of CR
  /retries N                             Set connect retries (default 3)
  /status                                Show link status
  /h | /help                             Show this help
  /q | /quit | /exit                     Quit
`

// terminal is the minimal line-oriented UI collaborator described in
// spec.md §1: it owns the prompt, the slash-command parser and the
// session transcript, and drives the engine's public API.
type terminal struct {
	mycall   ax25.Callsign
	engine   *link.Engine
	logger   *log.Logger
	logFile  io.Writer
	digipath []ax25.Callsign

	unprotoMode bool
}

func newTerminal(mycall ax25.Callsign, tp *transport.Transport, logger *log.Logger, logFile io.Writer) *terminal {
	t := &terminal{mycall: mycall, logger: logger, logFile: logFile}
	t.engine = link.New(link.Options{
		MyCall:    mycall,
		Transport: tp,
		Logger:    logger,
		Callbacks: link.Callbacks{
			OnSystem:    t.emitSystem,
			OnPayload:   t.emitPayload,
			OnConnected: t.emitConnected,
		},
	})
	return t
}

func (t *terminal) emitSystem(line string) {
	fmt.Fprintln(t.logFile, line)
	fmt.Println(line)
}

func (t *terminal) emitPayload(line string) {
	fmt.Fprintln(t.logFile, line)
	fmt.Println(line)
}

func (t *terminal) emitConnected() {
	status := t.engine.Status()
	fmt.Printf("\n[LINK] CONNECTED to %s\n\n", status.Peer)
}

func (t *terminal) prompt() string {
	status := t.engine.Status()
	if status.State == link.Connected {
		return fmt.Sprintf("[%s @ %s] >> ", t.mycall, status.Peer)
	}
	return fmt.Sprintf("[%s] >> ", t.mycall)
}

func (t *terminal) run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Print(t.prompt())
		if !scanner.Scan() {
			return
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		cmd := strings.TrimSpace(line)
		low := strings.ToLower(cmd)
		toks := strings.Fields(low)
		ftok := ""
		if len(toks) > 0 {
			ftok = toks[0]
		}

		status := t.engine.Status()

		// Persistent unproto mode: plain lines go as UI frames.
		if cmd != "" && !strings.HasPrefix(cmd, "/") && status.UnprotoOn {
			t.engine.SendText(cmd)
			continue
		}

		// Handshaking: queue plain text until CONNECTED (the engine
		// itself queues; this is just user feedback).
		if cmd != "" && !strings.HasPrefix(cmd, "/") && status.State == link.AwaitUA {
			t.engine.SendText(cmd)
			fmt.Printf("[QUEUED] Will send after link comes up.\n")
			continue
		}

		if cmd == "" {
			if status.PagerPending {
				t.engine.PagerContinue()
			}
			continue
		}

		if status.PagerPending && (low == "a" || low == "abort") {
			t.engine.PagerAbort()
			continue
		}

		switch ftok {
		case "/q", "/quit", "/exit":
			t.engine.Disconnect()
			return
		case "/h", "/help":
			fmt.Println(help)
			continue
		case "/d", "/disconnect":
			t.engine.Disconnect()
			continue
		case "/c", "/connect":
			t.handleConnect(cmd)
			continue
		case "/status":
			t.printStatus()
			continue
		case "/echo":
			if len(toks) >= 2 {
				t.engine.SetLocalEcho(toks[1] == "on")
			}
			continue
		case "/crlf":
			if len(toks) >= 2 {
				if toks[1] == "on" {
					t.engine.SetNewline(link.NewlineCRLF)
				} else {
					t.engine.SetNewline(link.NewlineCR)
				}
			}
			continue
		case "/retries":
			if len(toks) >= 2 {
				if n, err := strconv.Atoi(toks[1]); err == nil {
					t.engine.SetRetries(n)
				}
			}
			continue
		case "/unproto":
			t.handleUnproto(cmd, toks)
			continue
		case "/upexit":
			t.engine.SetUnprotoMode(false, ax25.Callsign{}, nil)
			continue
		}

		if strings.HasPrefix(cmd, "/") && status.State == link.Connected {
			t.engine.SendText(cmd)
			continue
		}
		if status.State == link.Connected {
			t.engine.SendText(cmd)
			continue
		}
		fmt.Println("Unknown command. /h for help.")
	}
}

func (t *terminal) handleConnect(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) < 2 {
		fmt.Println("Usage: /connect <DEST> [via DIGI1,DIGI2]")
		return
	}
	dest, err := ax25.ParseCallsign(parts[1])
	if err != nil {
		fmt.Println(err)
		return
	}
	digis := t.digipath
	if len(parts) >= 4 && strings.ToLower(parts[2]) == "via" {
		digis = parseDigis(parts[3])
	}
	go t.engine.Call(dest, digis)
}

func (t *terminal) handleUnproto(cmd string, toks []string) {
	if len(toks) >= 2 && (toks[1] == "off" || toks[1] == "stop" || toks[1] == "end" || toks[1] == "exit") {
		t.engine.SetUnprotoMode(false, ax25.Callsign{}, nil)
		fmt.Println("[UNPROTO] off")
		return
	}
	parts := strings.Fields(cmd)
	if len(parts) < 2 {
		fmt.Println("Usage: /unproto DEST [via DIGI1,DIGI2] [message...]  |  /unproto off")
		return
	}
	dest, err := ax25.ParseCallsign(parts[1])
	if err != nil {
		fmt.Println(err)
		return
	}
	digis := []ax25.Callsign(nil)
	msgStart := 2
	if len(parts) >= 4 && strings.ToLower(parts[2]) == "via" {
		digis = parseDigis(parts[3])
		msgStart = 4
	}
	if msgStart < len(parts) {
		msg := strings.Join(parts[msgStart:], " ")
		t.engine.SendUnproto(dest, msg, digis)
		return
	}
	t.engine.SetUnprotoMode(true, dest, digis)
	fmt.Printf("[UNPROTO] persistent: %s\n", dest)
}

func parseDigis(s string) []ax25.Callsign {
	var out []ax25.Callsign
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if c, err := ax25.ParseCallsign(part); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func (t *terminal) printStatus() {
	s := t.engine.Status()
	fmt.Printf("[STATUS] state=%s peer=%v vs=%d vr=%d\n", s.State, s.Peer, s.Vs, s.Vr)
	fmt.Printf("         echo=%v newline=%v retries=%d\n", s.LocalEcho, s.Newline, s.Retries)
	fmt.Printf("         unproto=%v dest=%v pager_pending=%v\n", s.UnprotoOn, s.UnprotoDest, s.PagerPending)
}
