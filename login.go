package rosapi

import (
	"crypto/md5" //nolint:gosec // required by the RouterOS legacy challenge/response scheme
	"encoding/hex"
	"fmt"
)

// login drives the handshake selected by cfg.Legacy (spec §4.4) and
// returns nil only on a successful !done with no trailer error.
func (c *Client) login() error {
	if c.cfg.Legacy {
		return c.loginLegacy()
	}
	return c.loginPlain()
}

// loginPlain sends one sentence with the name and password and expects a
// bare !done in response.
func (c *Client) loginPlain() error {
	err := c.f.writeSentence([]string{
		"/login",
		"=name=" + c.cfg.User,
		"=password=" + c.cfg.Pass,
	})
	if err != nil {
		return err
	}

	reply, err := c.f.readReply()
	if err != nil {
		return err
	}
	return authResult(reply)
}

// loginLegacy performs the two-round-trip MD5 challenge/response used by
// RouterOS before v6.43 (spec §4.4).
func (c *Client) loginLegacy() error {
	if err := c.f.writeSentence([]string{"/login"}); err != nil {
		return err
	}

	reply, err := c.f.readReply()
	if err != nil {
		return err
	}
	if err := authResult(reply); err != nil {
		return err
	}

	challengeHex, ok := reply.Trailer["ret"]
	if !ok {
		return fmt.Errorf("%w: legacy login: missing ret challenge", ErrProtocol)
	}
	challenge, err := hex.DecodeString(challengeHex)
	if err != nil || len(challenge) != 16 {
		return fmt.Errorf("%w: legacy login: malformed challenge %q", ErrProtocol, challengeHex)
	}

	response := md5Response(c.cfg.Pass, challenge)

	if err := c.f.writeSentence([]string{
		"/login",
		"=name=" + c.cfg.User,
		"=response=00" + response,
	}); err != nil {
		return err
	}

	reply, err = c.f.readReply()
	if err != nil {
		return err
	}
	return authResult(reply)
}

// md5Response computes MD5(0x00 || password || challenge) and renders it
// as 32 lowercase hex characters.
func md5Response(password string, challenge []byte) string {
	h := md5.New() //nolint:gosec // protocol-mandated digest, not used for anything security-sensitive here
	h.Write([]byte{0x00})
	h.Write([]byte(password))
	h.Write(challenge)
	return hex.EncodeToString(h.Sum(nil))
}

// authResult turns a login reply's terminator into the error taxonomy of
// spec §7: !trap/!fatal during a handshake is always AuthDenied, never a
// typed reply (login is the one place a !trap IS fatal to the attempt).
func authResult(reply *ParsedReply) error {
	switch reply.Terminator {
	case TerminatorDone:
		return nil
	case TerminatorTrap, TerminatorFatal:
		msg := reply.Trailer["message"]
		if msg == "" {
			return ErrAuthDenied
		}
		return fmt.Errorf("%w: %s", ErrAuthDenied, msg)
	}
	return fmt.Errorf("%w: unexpected login reply", ErrProtocol)
}
