package rosapi

import (
	"encoding/hex"
	"errors"
	"net"
	"testing"
	"time"
)

func TestMD5Response(t *testing.T) {
	t.Parallel()

	challenge, err := hex.DecodeString("ebddf7535953c936c93b75502bfb9982")
	if err != nil {
		t.Fatalf("decode challenge: %v", err)
	}

	got := md5Response("abc", challenge)
	want := "a12b59fef13fcc334c302cd991e0f30c"
	if got != want {
		t.Fatalf("md5Response = %q, want %q", got, want)
	}
}

func TestAuthResultDone(t *testing.T) {
	t.Parallel()
	reply := &ParsedReply{Terminator: TerminatorDone}
	if err := authResult(reply); err != nil {
		t.Fatalf("authResult: %v", err)
	}
}

func TestAuthResultTrapIsDenied(t *testing.T) {
	t.Parallel()
	reply := &ParsedReply{
		Terminator: TerminatorTrap,
		Trailer:    map[string]string{"message": "invalid user name or password"},
	}
	err := authResult(reply)
	if !errors.Is(err, ErrAuthDenied) {
		t.Fatalf("authResult = %v, want wrapping ErrAuthDenied", err)
	}
}

// pipeConn links two frames over an in-memory pipe so login() can be driven
// against a fake server without opening a socket.
func pipeConn(t *testing.T) (client, server net.Conn) {
	t.Helper()
	client, server = net.Pipe()
	return client, server
}

func TestLoginPlainSuccess(t *testing.T) {
	t.Parallel()

	clientConn, serverConn := pipeConn(t)
	defer clientConn.Close()
	defer serverConn.Close()

	c := &Client{
		cfg: Config{User: "admin", Pass: "secret"},
		f:   newFrame(clientConn),
	}

	done := make(chan error, 1)
	go func() { done <- c.loginPlain() }()

	serverFrame := newFrame(serverConn)
	words, err := serverFrame.readSentence()
	if err != nil {
		t.Fatalf("server readSentence: %v", err)
	}
	if len(words) != 3 || words[0] != "/login" {
		t.Fatalf("got words %v", words)
	}
	if err := serverFrame.writeSentence([]string{"!done"}); err != nil {
		t.Fatalf("server writeSentence: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("loginPlain: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for loginPlain")
	}
}

func TestLoginLegacyChallengeResponse(t *testing.T) {
	t.Parallel()

	clientConn, serverConn := pipeConn(t)
	defer clientConn.Close()
	defer serverConn.Close()

	c := &Client{
		cfg: Config{User: "admin", Pass: "abc"},
		f:   newFrame(clientConn),
	}

	done := make(chan error, 1)
	go func() { done <- c.loginLegacy() }()

	serverFrame := newFrame(serverConn)

	// First round: bare /login, server replies with the challenge.
	words, err := serverFrame.readSentence()
	if err != nil {
		t.Fatalf("server read 1: %v", err)
	}
	if len(words) != 1 || words[0] != "/login" {
		t.Fatalf("got words %v, want bare /login", words)
	}
	if err := serverFrame.writeSentence([]string{"!done", "=ret=ebddf7535953c936c93b75502bfb9982"}); err != nil {
		t.Fatalf("server write challenge: %v", err)
	}

	// Second round: name + response, server replies !done.
	words, err = serverFrame.readSentence()
	if err != nil {
		t.Fatalf("server read 2: %v", err)
	}
	wantResponse := "=response=00a12b59fef13fcc334c302cd991e0f30c"
	if len(words) != 3 || words[0] != "/login" || words[2] != wantResponse {
		t.Fatalf("got words %v, want response word %q", words, wantResponse)
	}
	if err := serverFrame.writeSentence([]string{"!done"}); err != nil {
		t.Fatalf("server write done: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("loginLegacy: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for loginLegacy")
	}
}

func TestLoginLegacyMalformedChallenge(t *testing.T) {
	t.Parallel()

	clientConn, serverConn := pipeConn(t)
	defer clientConn.Close()
	defer serverConn.Close()

	c := &Client{
		cfg: Config{User: "admin", Pass: "abc"},
		f:   newFrame(clientConn),
	}

	done := make(chan error, 1)
	go func() { done <- c.loginLegacy() }()

	serverFrame := newFrame(serverConn)
	if _, err := serverFrame.readSentence(); err != nil {
		t.Fatalf("server read: %v", err)
	}
	if err := serverFrame.writeSentence([]string{"!done", "=ret=not-hex"}); err != nil {
		t.Fatalf("server write: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrProtocol) {
			t.Fatalf("loginLegacy = %v, want wrapping ErrProtocol", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for loginLegacy")
	}
}
