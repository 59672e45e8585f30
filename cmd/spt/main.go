// Command spt is a terminal front-end for the KISS/AX.25 link engine:
// it connects to a host-side KISS TNC over TCP or serial, originates
// or accepts one AX.25 connected-mode session at a time, and exchanges
// line-oriented text with the remote station. It is the external UI
// collaborator spec.md describes in §1: command parsing, session
// logging, and line editing live here, not in the engine.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/chengmania/SimplePacketTerminal/internal/ax25"
	"github.com/chengmania/SimplePacketTerminal/internal/link"
	"github.com/chengmania/SimplePacketTerminal/internal/transport"
)

const banner = `Simple Packet Terminal
Free and Open Source, Without Warranty`

func main() {
	configPath := pflag.StringP("config", "c", "", "Optional YAML file supplying defaults for the flags below")
	hostname := pflag.StringP("hostname", "h", "127.0.0.1", "Hostname of TCP KISS TNC")
	port := pflag.StringP("port", "p", "8001", "Port. If it does not start with a digit, it is treated as a serial port, e.g. /dev/ttyAM0")
	serialSpeed := pflag.IntP("serial-speed", "s", 9600, "Serial port speed")
	retries := pflag.IntP("retries", "r", 3, "Connect retry attempts")
	localEcho := pflag.Bool("echo", false, "Local echo of sent text")
	crlf := pflag.Bool("crlf", false, "Send CRLF instead of CR")
	verbose := pflag.BoolP("verbose", "v", false, "Verbose (debug-level) logging")
	pflag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	args := pflag.Args()
	if len(args) < 1 && *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: spt MYCALL [TARGET] [--hostname H] [--port P] | spt --config FILE.yaml")
		os.Exit(1)
	}

	var cfg fileConfig
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			logger.Fatal("config", "err", err)
		}
	}

	mycallStr := cfg.MyCall
	if len(args) >= 1 {
		mycallStr = args[0]
	}
	target := cfg.Target
	if len(args) >= 2 {
		target = args[1]
	}
	if cfg.Host != "" && !pflag.CommandLine.Changed("hostname") {
		*hostname = cfg.Host
	}
	if cfg.Port != 0 && !pflag.CommandLine.Changed("port") {
		*port = strconv.Itoa(cfg.Port)
	}
	if cfg.Retries != 0 && !pflag.CommandLine.Changed("retries") {
		*retries = cfg.Retries
	}

	mycall, err := ax25.ParseCallsign(mycallStr)
	if err != nil {
		logger.Fatal("invalid MYCALL", "err", err)
	}

	tp, err := dial(*hostname, *port, *serialSpeed)
	if err != nil {
		logger.Fatal("KISS connection failed", "err", err)
	}

	logFile, err := os.Create(fmt.Sprintf("session-%s.log", time.Now().Format("20060102-150405")))
	if err != nil {
		logger.Fatal("session log", "err", err)
	}
	defer logFile.Close()

	term := newTerminal(mycall, tp, logger, logFile)
	term.engine.SetLocalEcho(*localEcho)
	if *crlf {
		term.engine.SetNewline(link.NewlineCRLF)
	}
	term.engine.SetRetries(*retries)
	for _, d := range cfg.Digis {
		dc, err := ax25.ParseCallsign(d)
		if err == nil {
			term.digipath = append(term.digipath, dc)
		}
	}
	if cfg.LocalEcho && !pflag.CommandLine.Changed("echo") {
		term.engine.SetLocalEcho(true)
	}
	if cfg.CRLF && !pflag.CommandLine.Changed("crlf") {
		term.engine.SetNewline(link.NewlineCRLF)
	}
	defer term.engine.Close()

	fmt.Println(banner)
	fmt.Printf("KISS Connection: %s:%s  -  MYCALL: %s\n", *hostname, *port, mycall)
	fmt.Println("Type /help for commands")
	if target != "" {
		fmt.Printf("Tip: /c %s\n", target)
	}

	term.run(os.Stdin)
}

func dial(host, port string, serialSpeed int) (*transport.Transport, error) {
	if len(port) > 0 && unicode.IsDigit(rune(port[0])) {
		return transport.DialTCP(host + ":" + port)
	}
	return transport.DialSerial(port, serialSpeed)
}
