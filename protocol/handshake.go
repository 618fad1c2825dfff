// File: protocol/handshake.go
// Package protocol provides the native WebSocket handshake without HTTP dependency.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This implements the RFC6455 upgrade directly over the raw request
// bytes, bypassing net/http. The parser is deliberately small: it
// needs only the Upgrade header and the Sec-WebSocket-Key value.

package protocol

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"fmt"

	"github.com/momentics/lightws/api"
)

// Handshake validation errors.
var (
	ErrInvalidUpgradeHeaders = fmt.Errorf("invalid upgrade headers: %w", api.ErrHandshakeFailed)
	ErrMissingWebSocketKey   = fmt.Errorf("missing Sec-WebSocket-Key header: %w", api.ErrHandshakeFailed)
	ErrOversizedWebSocketKey = fmt.Errorf("oversized Sec-WebSocket-Key value: %w", api.ErrHandshakeFailed)
)

var (
	crlf         = []byte("\r\n")
	headerEnd    = []byte("\r\n\r\n")
	upgradeName  = []byte("Upgrade")
	websocketTok = []byte("websocket")
	wsKeyName    = []byte("Sec-WebSocket-Key")
)

// ReadUpgradeRequest reads the client's initial HTTP request into buf,
// stopping at the header terminator or when buf is full. A request that
// does not fit the scratch buffer is judged on its first len(buf)
// bytes. A transport error before the terminator fails the handshake,
// no matter how many bytes arrived first.
func ReadUpgradeRequest(conn api.Conn, buf []byte) ([]byte, error) {
	total := 0
	for {
		n, err := conn.Read(buf[total:])
		total += n
		if bytes.Contains(buf[:total], headerEnd) || total == len(buf) {
			return buf[:total], nil
		}
		if err != nil {
			return buf[:total], fmt.Errorf("read upgrade request: %w", err)
		}
	}
}

// ParseUpgrade scans the raw request for a case-insensitive
// "Upgrade: websocket" header and extracts the Sec-WebSocket-Key
// value. The key must be present and at most AcceptKeyMaxLen bytes.
func ParseUpgrade(req []byte) (string, error) {
	var key []byte
	haveKey := false
	sawUpgrade := false

	for len(req) > 0 {
		line := req
		if i := bytes.Index(req, crlf); i >= 0 {
			line = req[:i]
			req = req[i+len(crlf):]
		} else {
			req = nil
		}
		if len(line) == 0 {
			break // end of headers
		}

		name, value, ok := cutHeader(line)
		if !ok {
			continue // request line or malformed header
		}
		switch {
		case bytes.EqualFold(name, upgradeName):
			if containsToken(value, websocketTok) {
				sawUpgrade = true
			}
		case bytes.EqualFold(name, wsKeyName):
			key = value
			haveKey = true
		}
	}

	if !sawUpgrade {
		return "", ErrInvalidUpgradeHeaders
	}
	if !haveKey || len(key) == 0 {
		return "", ErrMissingWebSocketKey
	}
	if len(key) > AcceptKeyMaxLen {
		return "", ErrOversizedWebSocketKey
	}
	return string(key), nil
}

// ComputeAcceptKey computes the Sec-WebSocket-Accept value from the client's key.
// This implements the algorithm specified in RFC6455 Section 1.3.
func ComputeAcceptKey(clientKey string) string {
	combined := clientKey + WebSocketGUID
	hash := sha1.Sum([]byte(combined))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// AppendUpgradeResponse appends the exact 101 Switching Protocols
// response to dst and returns the extended slice.
func AppendUpgradeResponse(dst []byte, acceptKey string) []byte {
	dst = append(dst, "HTTP/1.1 101 Switching Protocols\r\n"...)
	dst = append(dst, "Upgrade: websocket\r\n"...)
	dst = append(dst, "Connection: Upgrade\r\n"...)
	dst = append(dst, "Sec-WebSocket-Accept: "...)
	dst = append(dst, acceptKey...)
	dst = append(dst, "\r\n\r\n"...)
	return dst
}

// cutHeader splits a header line at the first colon, trimming
// whitespace around both parts.
func cutHeader(line []byte) (name, value []byte, ok bool) {
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return nil, nil, false
	}
	return bytes.TrimSpace(line[:i]), bytes.TrimSpace(line[i+1:]), true
}

// containsToken checks whether a comma-separated header value carries
// the token (case-insensitive).
func containsToken(headerValue, token []byte) bool {
	for _, p := range bytes.Split(headerValue, []byte{','}) {
		if bytes.EqualFold(bytes.TrimSpace(p), token) {
			return true
		}
	}
	return false
}
