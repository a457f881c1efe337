package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	clientidentifier "github.com/TheLox95/torrent-wire/pkg/clientIdentifier"
	filemanager "github.com/TheLox95/torrent-wire/pkg/fileManager"
	"github.com/TheLox95/torrent-wire/pkg/tracker"
)

func main() {
	var debugLevel DebugType = DebugWarning
	flag.Var(&debugLevel, "debug", "Debug level (info, debug, warning)")
	port := flag.Uint("port", tracker.DefaultPort, "port announced to trackers")
	peerID := flag.String("peer-id", "", "20-byte peer id (random when empty)")
	httpTimeout := flag.Duration("timeout", 15*time.Second, "tracker request timeout")
	dialTimeout := flag.Duration("dial-timeout", 3*time.Second, "peer dial and handshake timeout")
	flag.Usage = usage
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: debugLevel.Level()},
	)))

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	if *port > 0xffff {
		fmt.Fprintf(os.Stderr, "port %d out of range\n", *port)
		os.Exit(2)
	}

	id, err := resolvePeerID(*peerID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	c := &commands{
		out:         os.Stdout,
		files:       &filemanager.FileManager{},
		announcer:   tracker.NewAnnouncer(*httpTimeout),
		peerID:      id,
		port:        uint16(*port),
		dialTimeout: *dialTimeout,
	}
	if err := c.run(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolvePeerID(s string) (clientidentifier.PeerID, error) {
	if s == "" {
		return clientidentifier.NewPeerID(clientidentifier.DefaultPrefix)
	}
	return clientidentifier.ParsePeerID(s)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <command> <args>

Commands:
  decode <bencoded value>
  info <torrent file>
  peers <torrent file>
  handshake <torrent file> <ip:port>
  swarm <torrent file>

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

// LOGGING

type DebugType int

const (
	DebugInfo DebugType = iota
	DebugDebug
	DebugWarning
)

func (dt *DebugType) String() string {
	switch *dt {
	case DebugInfo:
		return "info"
	case DebugDebug:
		return "debug"
	case DebugWarning:
		return "warning"
	default:
		return "unknown"
	}
}

func (dt *DebugType) Set(s string) error {
	switch s {
	case "info":
		*dt = DebugInfo
	case "debug":
		*dt = DebugDebug
	case "warning", "warn":
		*dt = DebugWarning
	default:
		return fmt.Errorf("invalid debug type: %s", s)
	}
	return nil
}

func (dt DebugType) Level() slog.Level {
	switch dt {
	case DebugDebug:
		return slog.LevelDebug
	case DebugInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
