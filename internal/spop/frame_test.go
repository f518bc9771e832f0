package spop

import (
	"bytes"
	"testing"
)

// TestParseHAProxyHello is scenario A: a HAPROXY_HELLO frame decodes to the
// expected KV-list entries.
func TestParseHAProxyHello(t *testing.T) {
	buf := mustHex(t, `00 00 00 81 01 00 00 00 01 00 00 12 73 75 70 70
		6f 72 74 65 64 2d 76 65 72 73 69 6f 6e 73 08 03 32 2e 30 0e 6d 61 78
		2d 66 72 61 6d 65 2d 73 69 7a 65 03 fc f0 06 0c 63 61 70 61 62 69 6c
		69 74 69 65 73 08 10 70 69 70 65 6c 69 6e 69 6e 67 2c 61 73 79 6e 63
		09 65 6e 67 69 6e 65 2d 69 64 08 24 61 33 31 61 64 30 65 64 2d 62 62
		36 39 2d 34 36 63 35 2d 39 66 35 63 2d 62 32 30 33 62 62 35 39 61 38
		37 61`)

	total, err := CheckFrame(buf)
	if err != nil {
		t.Fatalf("CheckFrame: %v", err)
	}
	if total != len(buf) {
		t.Fatalf("CheckFrame length = %d, want %d", total, len(buf))
	}

	frame, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if frame.Header.Type != FrameHAProxyHello {
		t.Fatalf("type = %v, want FrameHAProxyHello", frame.Header.Type)
	}
	if !frame.Header.Flags.IsFin() {
		t.Fatal("want FIN set")
	}

	want := map[string]string{
		"supported-versions": "2.0",
		"max-frame-size":      "16380",
		"capabilities":        "pipelining,async",
		"engine-id":           "a31ad0ed-bb69-46c5-9f5c-b203bb59a87a",
	}
	for name, want := range want {
		v, ok := frame.KV.First(name)
		if !ok {
			t.Fatalf("missing KV entry %q", name)
		}
		if got := Stringify(v); got != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
}

// TestAgentHelloByteExactRoundTrip is scenario B: parsing then re-encoding
// an AGENT_HELLO frame must reproduce the exact input bytes.
func TestAgentHelloByteExactRoundTrip(t *testing.T) {
	buf := mustHex(t, `00 00 00 46 65 00 00 00 01 00 00 07 76 65 72 73
		69 6f 6e 08 03 32 2e 30 0e 6d 61 78 2d 66 72 61 6d 65 2d 73 69 7a 65
		03 fc f0 06 0c 63 61 70 61 62 69 6c 69 74 69 65 73 08 10 70 69 70 65
		6c 69 6e 69 6e 67 2c 61 73 79 6e 63`)

	frame, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if frame.Header.Type != FrameAgentHello {
		t.Fatalf("type = %v, want FrameAgentHello", frame.Header.Type)
	}

	got, err := EncodeFrame(nil, frame)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Fatalf("re-encoded bytes differ:\n got % x\nwant % x", got, buf)
	}
}

// TestEmptyAckRoundTrip is scenario C.
func TestEmptyAckRoundTrip(t *testing.T) {
	buf := mustHex(t, `00 00 00 07 67 00 00 00 01 02 01`)

	frame, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if frame.Header.Type != FrameAck {
		t.Fatalf("type = %v, want FrameAck", frame.Header.Type)
	}
	if frame.Header.StreamID != 2 || frame.Header.FrameID != 1 {
		t.Fatalf("stream_id/frame_id = %d/%d, want 2/1", frame.Header.StreamID, frame.Header.FrameID)
	}
	if len(frame.Actions) != 0 {
		t.Fatalf("actions = %v, want empty", frame.Actions)
	}

	got, err := EncodeFrame(nil, frame)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Fatalf("re-encoded bytes differ:\n got % x\nwant % x", got, buf)
	}
}

// TestNotifyParse is scenario D.
func TestNotifyParse(t *testing.T) {
	buf := mustHex(t, `00 00 00 8b 03 00 00 00 01 02 02 20 6f 70 65 6e
		74 72 61 63 69 6e 67 3a 66 72 6f 6e 74 65 6e 64 5f 74 63 70 5f 72 65
		71 75 65 73 74 03 02 69 64 08 29 36 31 62 35 37 65 66 30 2d 32 34 62
		62 2d 34 32 63 37 2d 38 39 33 35 2d 61 65 64 64 32 37 36 61 66 34 61
		35 3a 30 30 30 38 04 73 70 61 6e 08 14 46 72 6f 6e 74 65 6e 64 20 54
		43 50 20 72 65 71 75 65 73 74 08 63 68 69 6c 64 2d 6f 66 08 0e 43 6c
		69 65 6e 74 20 73 65 73 73 69 6f 6e`)

	frame, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if frame.Header.Type != FrameNotify {
		t.Fatalf("type = %v, want FrameNotify", frame.Header.Type)
	}
	if len(frame.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(frame.Messages))
	}
	msg := frame.Messages[0]
	if msg.Name != "opentracing:frontend_tcp_request" {
		t.Fatalf("message name = %q", msg.Name)
	}

	want := map[string]string{
		"id":        "61b57ef0-24bb-42c7-8935-aedd276af4a5:0008",
		"span":      "Frontend TCP request",
		"child-of":  "Client session",
	}
	for name, want := range want {
		v, ok := msg.Args.First(name)
		if !ok {
			t.Fatalf("missing message arg %q", name)
		}
		if got := Stringify(v); got != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
}

// TestReplyHeaderLaw is invariant 6.
func TestReplyHeaderLaw(t *testing.T) {
	in := FrameHeader{Type: FrameNotify, Flags: NewFrameFlags(false, false), StreamID: 7, FrameID: 3}
	reply := ReplyHeader(in, FrameAck)
	if reply.StreamID != in.StreamID || reply.FrameID != in.FrameID {
		t.Fatalf("reply stream/frame = %d/%d, want %d/%d", reply.StreamID, reply.FrameID, in.StreamID, in.FrameID)
	}
	if !reply.Flags.IsFin() || reply.Flags.IsAbort() {
		t.Fatalf("reply flags = %v, want FIN=1 ABORT=0", reply.Flags)
	}
}

// TestLengthPrefixSelfConsistency is invariant 4.
func TestLengthPrefixSelfConsistency(t *testing.T) {
	frame := Frame{
		Header: FrameHeader{Type: FrameAck, Flags: NewFrameFlags(true, false), StreamID: 1, FrameID: 1},
	}
	buf, err := EncodeFrame(nil, frame)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	total, err := CheckFrame(buf)
	if err != nil {
		t.Fatalf("CheckFrame: %v", err)
	}
	if total != len(buf) {
		t.Fatalf("CheckFrame length = %d, want %d", total, len(buf))
	}
}

// TestFrameRoundTripAgentHelloAndAck is invariant 3.
func TestFrameRoundTripAgentHelloAndAck(t *testing.T) {
	cases := []Frame{
		{
			Header: FrameHeader{Type: FrameAgentHello, Flags: NewFrameFlags(true, false), StreamID: 0, FrameID: 0},
			KV: KVList{
				{Name: "version", Value: StringVal("2.0")},
				{Name: "max-frame-size", Value: Uint32Val(16380)},
				{Name: "capabilities", Value: StringVal("pipelining")},
			},
		},
		{
			Header: FrameHeader{Type: FrameAck, Flags: NewFrameFlags(true, false), StreamID: 5, FrameID: 9},
			Actions: []Action{
				SetVar(ScopeRequest, "traceparent", StringVal("00-0-0-00")),
			},
		},
	}

	for _, want := range cases {
		buf, err := EncodeFrame(nil, want)
		if err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
		total, err := CheckFrame(buf)
		if err != nil {
			t.Fatalf("CheckFrame: %v", err)
		}
		got, err := ParseFrame(buf[:total])
		if err != nil {
			t.Fatalf("ParseFrame: %v", err)
		}
		if got.Header != want.Header {
			t.Fatalf("header = %+v, want %+v", got.Header, want.Header)
		}
		if len(got.KV) != len(want.KV) {
			t.Fatalf("KV length = %d, want %d", len(got.KV), len(want.KV))
		}
		for i := range want.KV {
			if got.KV[i] != want.KV[i] {
				t.Fatalf("KV[%d] = %+v, want %+v", i, got.KV[i], want.KV[i])
			}
		}
		if len(got.Actions) != len(want.Actions) {
			t.Fatalf("Actions length = %d, want %d", len(got.Actions), len(want.Actions))
		}
		for i := range want.Actions {
			if got.Actions[i] != want.Actions[i] {
				t.Fatalf("Actions[%d] = %+v, want %+v", i, got.Actions[i], want.Actions[i])
			}
		}
	}
}

func TestFragmentedFrameRejected(t *testing.T) {
	buf := mustHex(t, `00 00 00 07 67 00 00 00 00 02 01`)
	if _, err := ParseFrame(buf); err == nil {
		t.Fatal("non-FIN frame: want error, got nil")
	}
}
