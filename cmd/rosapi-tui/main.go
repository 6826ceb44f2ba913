// Command rosapi-tui is an interactive terminal session against a
// RouterOS device: type a command path, see its highlighted reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/corewire/rosapi"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("rosapi-tui", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "rosapi-tui — interactive RouterOS API session\n\nUsage:\n  rosapi-tui [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	host := fs.String("host", "", "device address (required)")
	user := fs.String("user", "", "API username (required)")
	pass := fs.String("pass", "", "API password (required)")
	port := fs.Int("port", 0, "API port (default 8728, or 8729 with -ssl)")
	ssl := fs.Bool("ssl", false, "connect over TLS")
	legacy := fs.Bool("legacy", false, "use legacy MD5-challenge login instead of plain login")
	timeout := fs.Duration("timeout", 10*time.Second, "connect timeout")
	insecure := fs.Bool("insecure", false, "skip TLS certificate verification")
	repeatThreshold := fs.Int("repeat-threshold", 0, "flag the same command word issued this many times within -repeat-window (0 disables)")
	repeatWindow := fs.Duration("repeat-window", time.Second, "sliding window for -repeat-threshold")
	repeatCooldown := fs.Duration("repeat-cooldown", 10*time.Second, "minimum gap between repeat alerts for the same command")
	slowThreshold := fs.Duration("slow-threshold", 0, "flag a reply taking at least this long (0 disables)")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("rosapi-tui %s\n", version)
		return
	}

	if *host == "" || *user == "" || *pass == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := rosapi.Config{
		Host: *host, User: *user, Pass: *pass,
		Port: *port, SSL: *ssl, Legacy: *legacy,
		Timeout: *timeout, InsecureSkipVerify: *insecure,
		RepeatThreshold: *repeatThreshold,
		RepeatWindow:    *repeatWindow,
		RepeatCooldown:  *repeatCooldown,
		SlowThreshold:   *slowThreshold,
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg rosapi.Config) error {
	broker := rosapi.NewBroker()
	events, unsub := broker.Subscribe()
	defer unsub()

	client, err := rosapi.Dial(context.Background(), cfg, broker)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	p := tea.NewProgram(New(client, events), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
