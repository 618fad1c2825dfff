package protocol_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/fake"
	"github.com/momentics/lightws/protocol"
)

const sampleRequest = "GET /chat HTTP/1.1\r\n" +
	"Host: server.example.com\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Version: 13\r\n" +
	"\r\n"

func TestComputeAcceptKey(t *testing.T) {
	// Known vector from RFC 6455 section 1.3.
	got := protocol.ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	if got != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		t.Errorf("accept key = %q", got)
	}
}

func TestParseUpgrade(t *testing.T) {
	key, err := protocol.ParseUpgrade([]byte(sampleRequest))
	if err != nil {
		t.Fatal(err)
	}
	if key != "dGhlIHNhbXBsZSBub25jZQ==" {
		t.Errorf("key = %q", key)
	}
}

func TestParseUpgradeCaseInsensitive(t *testing.T) {
	req := "GET / HTTP/1.1\r\n" +
		"upgrade: WebSocket\r\n" +
		"sec-websocket-key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"\r\n"
	key, err := protocol.ParseUpgrade([]byte(req))
	if err != nil {
		t.Fatal(err)
	}
	if key != "dGhlIHNhbXBsZSBub25jZQ==" {
		t.Errorf("key = %q", key)
	}
}

func TestParseUpgradeTokenList(t *testing.T) {
	req := "GET / HTTP/1.1\r\n" +
		"Upgrade: h2c, websocket\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"\r\n"
	if _, err := protocol.ParseUpgrade([]byte(req)); err != nil {
		t.Fatal(err)
	}
}

func TestParseUpgradeMissingKey(t *testing.T) {
	req := "GET / HTTP/1.1\r\nUpgrade: websocket\r\n\r\n"
	_, err := protocol.ParseUpgrade([]byte(req))
	if !errors.Is(err, protocol.ErrMissingWebSocketKey) {
		t.Errorf("err = %v", err)
	}
	if !errors.Is(err, api.ErrHandshakeFailed) {
		t.Errorf("err %v does not wrap handshake failure", err)
	}
}

func TestParseUpgradeNotWebSocket(t *testing.T) {
	req := "GET / HTTP/1.1\r\nHost: x\r\nSec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"
	if _, err := protocol.ParseUpgrade([]byte(req)); !errors.Is(err, protocol.ErrInvalidUpgradeHeaders) {
		t.Errorf("err = %v", err)
	}
}

func TestParseUpgradeOversizedKey(t *testing.T) {
	req := "GET / HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Sec-WebSocket-Key: " + strings.Repeat("A", 40) + "\r\n" +
		"\r\n"
	if _, err := protocol.ParseUpgrade([]byte(req)); !errors.Is(err, protocol.ErrOversizedWebSocketKey) {
		t.Errorf("err = %v", err)
	}
}

func TestUpgradeResponseBytes(t *testing.T) {
	resp := protocol.AppendUpgradeResponse(nil, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")
	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"\r\n"
	if string(resp) != want {
		t.Errorf("response = %q", resp)
	}
}

func TestReadUpgradeRequestSegmented(t *testing.T) {
	conn := fake.NewConn()
	conn.QueueRead([]byte(sampleRequest[:40]))
	conn.QueueRead([]byte(sampleRequest[40:]))

	buf := make([]byte, protocol.HandshakeBufferSize)
	req, err := protocol.ReadUpgradeRequest(conn, buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(req, []byte(sampleRequest)) {
		t.Errorf("request = %q", req)
	}
}

func TestReadUpgradeRequestTruncated(t *testing.T) {
	// Valid headers but no terminator before the transport gives up.
	conn := fake.NewConn()
	conn.QueueRead([]byte(strings.TrimSuffix(sampleRequest, "\r\n")))

	buf := make([]byte, protocol.HandshakeBufferSize)
	if _, err := protocol.ReadUpgradeRequest(conn, buf); err == nil {
		t.Error("truncated request read without error")
	}
}

func TestReadUpgradeRequestBufferFull(t *testing.T) {
	conn := fake.NewConn()
	conn.QueueRead([]byte(sampleRequest))

	buf := make([]byte, 32)
	req, err := protocol.ReadUpgradeRequest(conn, buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(req) != 32 {
		t.Errorf("len = %d, want 32", len(req))
	}
}
