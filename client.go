package rosapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// State is the connection manager's lifecycle state (spec §4.5).
type State int

const (
	StateDisconnected State = iota
	StateOpening
	StateLoggingIn
	StateReady
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateOpening:
		return "opening"
	case StateLoggingIn:
		return "logging in"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	}
	return "unknown"
}

// Client owns one transport handle and the config it was dialed with. It
// is not safe for concurrent use (spec §5) except for its optional Broker,
// which is.
//
// The zero value is not usable; create one with Dial.
type Client struct {
	cfg Config
	id  string

	conn  net.Conn
	f     *frame
	state State

	// awaitingReply is true between a successful Run's write and its
	// read; a second Write before the first Read completes is a
	// programmer error (ProtocolMisuse), not supported by this package
	// (spec §4.6 / §6 Non-goals: no pipelining).
	awaitingReply bool

	broker   *Broker
	detector *Detector
}

// newDetector builds the Detector a Dial'd Client drives every Run
// through, or nil if neither repeat nor slow-reply detection was
// configured (the common case: both default to disabled).
func newDetector(cfg Config) *Detector {
	if cfg.RepeatThreshold <= 0 && cfg.SlowThreshold <= 0 {
		return nil
	}
	return NewDetector(cfg.RepeatThreshold, cfg.RepeatWindow, cfg.RepeatCooldown, cfg.SlowThreshold)
}

// Dial opens a transport, authenticates, and returns a Client in the
// Ready state. On any failure it retries up to cfg.Attempts times,
// sleeping cfg.Delay between attempts, closing the transport from the
// failed attempt before retrying. If every attempt fails, it returns
// ErrConnectionFailed wrapping the last error.
//
// broker may be nil; if non-nil, lifecycle events are published to it.
func Dial(ctx context.Context, cfg Config, broker *Broker) (*Client, error) {
	cfg, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		id:       uuid.New().String(),
		broker:   broker,
		detector: newDetector(cfg),
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		c.emit(Event{Kind: EventDialing})

		if err := c.openAndLogin(ctx); err != nil {
			lastErr = err
			c.teardown()

			if attempt < cfg.Attempts {
				c.emit(Event{Kind: EventLoginFailed})
				select {
				case <-time.After(cfg.Delay):
				case <-ctx.Done():
					return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, ctx.Err())
				}
			}
			continue
		}

		c.state = StateReady
		c.emit(Event{Kind: EventLoginOK})
		return c, nil
	}

	c.emit(Event{Kind: EventLoginFailed})
	return nil, fmt.Errorf("%w: %d attempts exhausted: %w", ErrConnectionFailed, cfg.Attempts, lastErr)
}

// openAndLogin runs one open-transport-then-login cycle.
func (c *Client) openAndLogin(ctx context.Context) error {
	c.state = StateOpening
	if err := c.openTransport(ctx); err != nil {
		return err
	}

	c.state = StateLoggingIn
	if err := c.login(); err != nil {
		return err
	}

	return nil
}

// openTransport dials host:port, optionally wrapping the connection in a
// TLS handshake, bounded by cfg.Timeout.
func (c *Client) openTransport(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrTransport, addr, err)
	}

	if c.cfg.SSL {
		tlsConn := tls.Client(conn, c.cfg.tlsConfig())
		if err := tlsConn.HandshakeContext(dialCtx); err != nil {
			_ = conn.Close()
			return fmt.Errorf("%w: tls handshake %s: %v", ErrTransport, addr, err)
		}
		conn = tlsConn
	}

	c.conn = conn
	c.f = newFrame(conn)
	return nil
}

// teardown closes the transport idempotently and resets connection state
// without touching cfg. It is safe to call on a Client that never opened
// a transport.
func (c *Client) teardown() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.f = nil
	c.awaitingReply = false
	c.state = StateDisconnected
}

// Close shuts down the transport idempotently; subsequent Run calls fail
// with ErrProtocolMisuse ("not connected").
func (c *Client) Close() error {
	if c.state == StateDisconnected {
		return nil
	}
	c.state = StateClosing
	c.teardown()
	c.emit(Event{Kind: EventClosed})
	return nil
}

// Run writes one request sentence and reads its reply. Concurrent or
// overlapping calls (issuing a second Run before the prior one returns)
// are a programmer error: Run itself is not reentrant-safe, so that
// constraint is naturally enforced by awaitingReply rather than by a
// mutex (spec §4.6: no pipelining is supported at all).
func (c *Client) Run(query Query) (*ParsedReply, error) {
	if c.state != StateReady {
		return nil, fmt.Errorf("%w: not connected", ErrProtocolMisuse)
	}
	if c.awaitingReply {
		return nil, fmt.Errorf("%w: previous reply not yet consumed", ErrProtocolMisuse)
	}

	words := query.Words()
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrProtocolMisuse)
	}

	c.awaitingReply = true
	defer func() { c.awaitingReply = false }()

	start := time.Now()

	if err := c.f.writeSentence(words); err != nil {
		c.state = StateDisconnected
		c.teardown()
		return nil, err
	}

	reply, err := c.f.readReply()
	if err != nil {
		c.state = StateDisconnected
		c.teardown()
		return nil, err
	}
	elapsed := time.Since(start)

	c.detect(words[0], start, elapsed)

	switch reply.Terminator {
	case TerminatorTrap:
		c.emit(Event{Kind: EventTrap, Command: words[0], Reply: reply})
	case TerminatorFatal:
		c.emit(Event{Kind: EventTrap, Command: words[0], Reply: reply})
		c.state = StateDisconnected
		c.teardown()
		return reply, reply.Error()
	default:
		c.emit(Event{Kind: EventReply, Command: words[0], Reply: reply})
	}

	return reply, nil
}

// detect feeds a completed command/elapsed pair through c.detector, if
// configured, and emits RepeatAlert/SlowAlert events through the broker
// when either threshold trips.
func (c *Client) detect(command string, at time.Time, elapsed time.Duration) {
	if c.detector == nil {
		return
	}
	if r := c.detector.Record(command, at); r.Alert != nil {
		c.emit(Event{Kind: EventRepeatAlert, Command: command, RepeatAlert: r.Alert})
	}
	if sa := c.detector.CheckSlow(command, elapsed); sa != nil {
		c.emit(Event{Kind: EventSlowReply, Command: command, SlowAlert: sa})
	}
}

// State reports the connection's current lifecycle state.
func (c *Client) State() State { return c.state }

// ID returns the correlation ID generated for this connection at Dial
// time, used to tag published Events.
func (c *Client) ID() string { return c.id }

// emit stamps ev with this Client's connection ID and the current time,
// then publishes it to the broker if one was supplied at Dial time.
func (c *Client) emit(ev Event) {
	if c.broker == nil {
		return
	}
	ev.ConnID = c.id
	ev.OccurredAt = time.Now()
	c.broker.Publish(ev)
}
