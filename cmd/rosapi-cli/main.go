// Command rosapi-cli runs a single RouterOS API command against a device
// and prints its reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/corewire/rosapi"
	"github.com/corewire/rosapi/highlight"
	"github.com/corewire/rosapi/web"
)

var version = "dev"

// attrList collects repeated -attr name=value flags.
type attrList []rosapi.Attr

func (a *attrList) String() string {
	parts := make([]string, len(*a))
	for i, attr := range *a {
		parts[i] = attr.Name + "=" + attr.Value
	}
	return strings.Join(parts, ",")
}

func (a *attrList) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("-attr must be name=value, got %q", raw)
	}
	*a = append(*a, rosapi.NewAttr(name, value))
	return nil
}

func main() {
	fs := flag.NewFlagSet("rosapi-cli", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "rosapi-cli — run one RouterOS API command\n\nUsage:\n  rosapi-cli [flags] /command/path\n\nFlags:\n")
		fs.PrintDefaults()
	}

	host := fs.String("host", "", "device address (required)")
	user := fs.String("user", "", "API username (required)")
	pass := fs.String("pass", "", "API password (required)")
	port := fs.Int("port", 0, "API port (default 8728, or 8729 with -ssl)")
	ssl := fs.Bool("ssl", false, "connect over TLS")
	legacy := fs.Bool("legacy", false, "use legacy MD5-challenge login instead of plain login")
	timeout := fs.Duration("timeout", 10*time.Second, "connect timeout")
	attempts := fs.Int("attempts", 1, "login attempts before giving up")
	delay := fs.Duration("delay", time.Second, "delay between failed login attempts")
	insecure := fs.Bool("insecure", false, "skip TLS certificate verification")
	httpAddr := fs.String("http", "", "serve an SSE event feed at this address while running (e.g. :8080)")
	verbose := fs.Bool("verbose", false, "print highlighted events and the outgoing command to stderr")
	repeatThreshold := fs.Int("repeat-threshold", 0, "flag the same command word issued this many times within -repeat-window (0 disables)")
	repeatWindow := fs.Duration("repeat-window", time.Second, "sliding window for -repeat-threshold")
	repeatCooldown := fs.Duration("repeat-cooldown", 10*time.Second, "minimum gap between repeat alerts for the same command")
	slowThreshold := fs.Duration("slow-threshold", 0, "flag a reply taking at least this long (0 disables)")
	showVersion := fs.Bool("version", false, "show version and exit")

	var attrs attrList
	fs.Var(&attrs, "attr", "attribute to attach, name=value (repeatable)")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("rosapi-cli %s\n", version)
		return
	}

	path := fs.Arg(0)
	if *host == "" || *user == "" || *pass == "" || path == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := rosapi.Config{
		Host: *host, User: *user, Pass: *pass,
		Port: *port, SSL: *ssl, Legacy: *legacy,
		Timeout: *timeout, Attempts: *attempts, Delay: *delay,
		InsecureSkipVerify: *insecure,
		RepeatThreshold:    *repeatThreshold,
		RepeatWindow:       *repeatWindow,
		RepeatCooldown:     *repeatCooldown,
		SlowThreshold:      *slowThreshold,
	}

	if err := run(cfg, path, attrs, *httpAddr, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(cfg rosapi.Config, path string, attrs attrList, httpAddr string, verbose bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := rosapi.NewBroker()

	if verbose {
		ch, unsub := b.Subscribe()
		defer unsub()
		go func() {
			for ev := range ch {
				switch {
				case ev.RepeatAlert != nil:
					log.Printf("%s %s issued %d times within the repeat window", ev.Kind, ev.RepeatAlert.Command, ev.RepeatAlert.Count)
				case ev.SlowAlert != nil:
					log.Printf("%s %s took %s", ev.Kind, ev.SlowAlert.Command, ev.SlowAlert.Elapsed)
				case ev.Reply == nil:
					log.Printf("%s %s", ev.Kind, ev.Command)
				default:
					tag := "!done"
					switch ev.Reply.Terminator {
					case rosapi.TerminatorTrap:
						tag = "!trap"
					case rosapi.TerminatorFatal:
						tag = "!fatal"
					}
					log.Printf("%s %s", ev.Kind, highlight.Sentence(tag, ev.Reply.Trailer))
				}
			}
		}()
	}

	if httpAddr != "" {
		var lc net.ListenConfig
		lis, err := lc.Listen(ctx, "tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("listen http %s: %w", httpAddr, err)
		}
		srv := web.New(b)
		go func() {
			log.Printf("event feed listening on %s", httpAddr)
			if err := srv.Serve(lis); err != nil {
				log.Printf("http serve: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client, err := rosapi.Dial(ctx, cfg, b)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = client.Close() }()

	query := rosapi.Command(path, attrs...)
	if verbose {
		log.Printf("-> %s", strings.Join(rosapi.Redact(query.Words()), " "))
	} else {
		log.Printf("%s", highlight.Command(path))
	}
	reply, err := client.Run(query)
	if err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}

	for _, row := range reply.Rows {
		fmt.Println(highlight.Sentence("!re", row))
	}
	return nil
}
