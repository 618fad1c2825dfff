package protocol_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/momentics/lightws/api"
	"github.com/momentics/lightws/protocol"
)

// clientFrame builds a masked client-to-server frame.
func clientFrame(opcode byte, payload []byte, fin bool, key [4]byte) []byte {
	var buf []byte
	b0 := opcode
	if fin {
		b0 |= protocol.FinBit
	}
	buf = append(buf, b0)

	switch {
	case len(payload) <= 125:
		buf = append(buf, protocol.MaskBit|byte(len(payload)))
	case len(payload) <= 0xFFFF:
		buf = append(buf, protocol.MaskBit|126, 0, 0)
		binary.BigEndian.PutUint16(buf[2:], uint16(len(payload)))
	default:
		buf = append(buf, protocol.MaskBit|127, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint64(buf[2:], uint64(len(payload)))
	}

	buf = append(buf, key[:]...)
	for i, b := range payload {
		buf = append(buf, b^key[i%4])
	}
	return buf
}

func TestEncodeTextFrame(t *testing.T) {
	dst := make([]byte, 32)
	n, err := protocol.EncodeFrame(dst, protocol.OpcodeText, []byte("hello"), true)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x81, 0x05, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(dst[:n], want) {
		t.Errorf("encoded frame = % x, want % x", dst[:n], want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("round trip payload")
	dst := make([]byte, 64)
	n, err := protocol.EncodeFrame(dst, protocol.OpcodeBinary, payload, true)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := protocol.DecodeFrameInPlace(dst[:n])
	if err != nil {
		t.Fatal(err)
	}
	if frame.Opcode != protocol.OpcodeBinary || !frame.IsFinal || frame.Masked {
		t.Errorf("frame = %+v", frame)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Error("payload mismatch")
	}
}

func TestDecodeMaskedFrame(t *testing.T) {
	key := [4]byte{0x12, 0x34, 0x56, 0x78}
	buf := clientFrame(protocol.OpcodeText, []byte("hello"), true, key)

	frame, err := protocol.DecodeFrameInPlace(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !frame.Masked {
		t.Error("mask bit lost")
	}
	if !bytes.Equal(frame.Payload, []byte("hello")) {
		t.Errorf("unmasked payload = %q", frame.Payload)
	}
}

func TestHeaderSizes(t *testing.T) {
	cases := []struct {
		payloadLen int
		headerLen  int
	}{
		{0, 2},
		{125, 2},
		{126, 4},
		{0xFFFF, 4},
		{0x10000, 10},
	}
	for _, c := range cases {
		if got := protocol.EncodedHeaderLen(c.payloadLen); got != c.headerLen {
			t.Errorf("EncodedHeaderLen(%d) = %d, want %d", c.payloadLen, got, c.headerLen)
		}
		payload := make([]byte, c.payloadLen)
		dst := make([]byte, c.headerLen+c.payloadLen)
		n, err := protocol.EncodeFrame(dst, protocol.OpcodeBinary, payload, true)
		if err != nil {
			t.Fatal(err)
		}
		if n != c.headerLen+c.payloadLen {
			t.Errorf("encoded %d bytes for payload %d, want %d", n, c.payloadLen, c.headerLen+c.payloadLen)
		}
	}
}

func TestDecodeExtended16(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 300)
	key := [4]byte{1, 2, 3, 4}
	buf := clientFrame(protocol.OpcodeBinary, payload, true, key)
	if buf[1]&0x7F != 126 {
		t.Fatalf("expected extended-16 marker, got %#x", buf[1])
	}

	frame, err := protocol.DecodeFrameInPlace(buf)
	if err != nil {
		t.Fatal(err)
	}
	if frame.PayloadLen != 300 {
		t.Errorf("PayloadLen = %d, want 300", frame.PayloadLen)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Error("payload mismatch")
	}
}

func TestDecodeTruncated(t *testing.T) {
	key := [4]byte{9, 9, 9, 9}
	full := clientFrame(protocol.OpcodeText, []byte("truncate me"), true, key)

	for _, cut := range []int{0, 1, 3, len(full) - 1} {
		if _, err := protocol.DecodeFrameInPlace(full[:cut]); !errors.Is(err, api.ErrProtocolViolation) {
			t.Errorf("cut=%d: err = %v, want protocol violation", cut, err)
		}
	}
}

func TestControlFrameRules(t *testing.T) {
	key := [4]byte{5, 6, 7, 8}

	big := clientFrame(protocol.OpcodePing, make([]byte, 126), true, key)
	if _, err := protocol.DecodeFrameInPlace(big); !errors.Is(err, api.ErrProtocolViolation) {
		t.Errorf("oversize ping: err = %v", err)
	}

	nonFin := clientFrame(protocol.OpcodeClose, nil, false, key)
	if _, err := protocol.DecodeFrameInPlace(nonFin); !errors.Is(err, api.ErrProtocolViolation) {
		t.Errorf("fragmented close: err = %v", err)
	}

	dst := make([]byte, 256)
	if _, err := protocol.EncodeFrame(dst, protocol.OpcodePing, make([]byte, 126), true); !errors.Is(err, api.ErrProtocolViolation) {
		t.Errorf("encode oversize ping: err = %v", err)
	}
	if _, err := protocol.EncodeFrame(dst, protocol.OpcodePing, nil, false); !errors.Is(err, api.ErrProtocolViolation) {
		t.Errorf("encode fragmented ping: err = %v", err)
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	dst := make([]byte, 3)
	if _, err := protocol.EncodeFrame(dst, protocol.OpcodeText, []byte("hello"), true); !errors.Is(err, api.ErrSendFailed) {
		t.Errorf("err = %v, want send failure", err)
	}
}
