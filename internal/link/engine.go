// Package link implements the AX.25 LAPB connection state machine
// (spec.md §4.5): handshake, in-order I-frame delivery, sliding-window
// acknowledgement, UI datagrams, keepalive polling, the
// handshake-deferred send queue, and pager-prompt detection. It is the
// public surface a terminal front-end drives (spec.md §4.9).
//
// Modeled on the KissLink class of the Python original this repo
// replaces, and written the way the direwolf-derived examples in this
// corpus structure a concurrent receive loop around a single
// mutual-exclusion lock.
package link

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chengmania/SimplePacketTerminal/internal/ax25"
	"github.com/chengmania/SimplePacketTerminal/internal/kissproto"
	"github.com/chengmania/SimplePacketTerminal/internal/transport"
)

// Newline selects the line terminator appended to outgoing text.
type Newline int

const (
	NewlineCR Newline = iota
	NewlineCRLF
)

func (n Newline) bytes() string {
	if n == NewlineCRLF {
		return "\r\n"
	}
	return "\r"
}

// Callbacks carry the engine's events (spec.md §4.9, §5). OnPayload and
// OnConnected are invoked from the engine's receive goroutine with the
// engine's mutex released, so they may call Engine methods. OnSystem is
// invoked from the receive goroutine and also from the goroutine calling
// Call, Disconnect, SendText or SendUnproto; some notices raised while
// the receive goroutine handles a frame are delivered with the mutex
// held, so OnSystem must not call Engine methods. No callback should
// block for long.
type Callbacks struct {
	// OnSystem reports link notices: handshake progress, errors,
	// disconnection.
	OnSystem func(line string)
	// OnPayload reports received text content: I-frame lines or UI
	// monitor lines.
	OnPayload func(line string)
	// OnConnected fires exactly once per DISCONNECTED->CONNECTED
	// transition.
	OnConnected func()
}

func (c Callbacks) system(format string, args ...any) {
	if c.OnSystem != nil {
		c.OnSystem(fmt.Sprintf(format, args...))
	}
}

func (c Callbacks) payload(line string) {
	if c.OnPayload != nil {
		c.OnPayload(line)
	}
}

func (c Callbacks) connected() {
	if c.OnConnected != nil {
		c.OnConnected()
	}
}

const (
	defaultRetries     = 3
	defaultRetryWait   = 2500 * time.Millisecond
	keepaliveInterval  = 120 * time.Second
	pagerTailMax       = 512
)

// Engine is one link-layer session owner: it holds the transport and
// all mutable link state behind a single mutex, following spec.md §5's
// concurrency model.
type Engine struct {
	mu sync.Mutex

	mycall ax25.Callsign
	tp     *transport.Transport
	cb     Callbacks
	logger *log.Logger

	state      State
	peer       ax25.Callsign
	digipath   []ax25.Callsign
	vs, vr     int
	appbuf     string
	txNewline  Newline
	localEcho  bool
	retries    int
	retryWait  time.Duration

	unproto struct {
		enabled bool
		dest    ax25.Callsign
		digis   []ax25.Callsign
	}

	pending []string

	pagerPending bool
	pagerTail    string

	dmFallbackTried bool
	handshakeDone   chan struct{}
	handshakeOK     bool

	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Options configures a new Engine.
type Options struct {
	MyCall    ax25.Callsign
	Transport *transport.Transport
	Callbacks Callbacks
	// Logger defaults to a package-level logger on os.Stderr at Info
	// level if nil.
	Logger *log.Logger
}

// New constructs an Engine bound to an already-dialed transport and
// starts its receive and keepalive goroutines.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		mycall:    opts.MyCall,
		tp:        opts.Transport,
		cb:        opts.Callbacks,
		logger:    logger,
		state:     Disconnected,
		txNewline: NewlineCR,
		retries:   defaultRetries,
		retryWait: defaultRetryWait,
		shutdown:  make(chan struct{}),
	}
	e.wg.Add(2)
	go e.recvLoop()
	go e.keepaliveLoop()
	return e
}

// Close shuts the engine down: the receive loop unblocks at its next
// transport timeout and callbacks stop firing once Close returns.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.shutdown)
	})
	err := e.tp.Close()
	e.wg.Wait()
	return err
}

// Status is a point-in-time snapshot of the link for introspection
// (the original's "/status" command).
type Status struct {
	State        State
	Peer         ax25.Callsign
	HasPeer      bool
	Digipath     []ax25.Callsign
	Vs, Vr       int
	LocalEcho    bool
	Newline      Newline
	Retries      int
	UnprotoOn    bool
	UnprotoDest  ax25.Callsign
	UnprotoDigis []ax25.Callsign
	PagerPending bool
}

// Status returns a consistent snapshot of the current link state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:        e.state,
		Peer:         e.peer,
		HasPeer:      e.state != Disconnected,
		Digipath:     append([]ax25.Callsign(nil), e.digipath...),
		Vs:           e.vs,
		Vr:           e.vr,
		LocalEcho:    e.localEcho,
		Newline:      e.txNewline,
		Retries:      e.retries,
		UnprotoOn:    e.unproto.enabled,
		UnprotoDest:  e.unproto.dest,
		UnprotoDigis: append([]ax25.Callsign(nil), e.unproto.digis...),
		PagerPending: e.pagerPending,
	}
}

// SetLocalEcho toggles echoing outgoing lines through OnSystem.
func (e *Engine) SetLocalEcho(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.localEcho = on
}

// SetNewline selects CR or CRLF line termination for outgoing text.
func (e *Engine) SetNewline(n Newline) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.txNewline = n
}

// SetRetries sets the number of SABM(E) attempts Call will make.
func (e *Engine) SetRetries(n int) {
	if n < 1 {
		n = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.retries = n
}

// SetUnprotoMode enables or disables persistent unproto redirection:
// while enabled, SendText emits UI frames to dest/digis instead of
// I-frames to the connected peer.
func (e *Engine) SetUnprotoMode(on bool, dest ax25.Callsign, digis []ax25.Callsign) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unproto.enabled = on
	if on {
		e.unproto.dest = dest
		e.unproto.digis = digis
	}
}
