package main

import (
	"bytes"
	"reflect"
	"testing"
)

// clientFrame builds the raw wire form of a client command, checksum
// included.
func clientFrame(typ, cmd byte, data []byte) []byte {
	p := rplethPacket{Type: typ, Command: cmd, DataLen: byte(len(data)), Data: data}
	f := []byte{typ, cmd, byte(len(data))}
	f = append(f, data...)
	return append(f, p.checksum())
}

func TestDecodeCommand(t *testing.T) {
	var tests = []struct {
		in   []byte
		want rplethPacket
	}{
		{clientFrame(typeRpleth, cmdPing, nil),
			rplethPacket{Sender: senderClient, Type: typeRpleth, Command: cmdPing, DataLen: 0, Data: []byte{}, Good: true}},
		{clientFrame(typeHID, cmdGreenLed, []byte{1}),
			rplethPacket{Sender: senderClient, Type: typeHID, Command: cmdGreenLed, DataLen: 1, Data: []byte{1}, Good: true}},
		{clientFrame(typeHID, cmdBadge, []byte{0x40, 0x61, 0x81, 0x80}),
			rplethPacket{Sender: senderClient, Type: typeHID, Command: cmdBadge, DataLen: 4, Data: []byte{0x40, 0x61, 0x81, 0x80}, Good: true}},
		{clientFrame(typeLCD, cmdDisplay, []byte("hi")),
			rplethPacket{Sender: senderClient, Type: typeLCD, Command: cmdDisplay, DataLen: 2, Data: []byte("hi"), Good: true}},
	}

	for _, tt := range tests {
		buf := newFramingBuffer()
		if err := buf.Write(tt.in); err != nil {
			t.Fatal(err)
		}
		got, err := decodeCommand(buf)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("decodeCommand(% x) => %+v; want %+v", tt.in, got, tt.want)
		}
		if buf.Len() != 0 {
			t.Errorf("decodeCommand(% x) left %d bytes unconsumed", tt.in, buf.Len())
		}
	}
}

func TestDecodeCommandBadType(t *testing.T) {
	buf := newFramingBuffer()
	if err := buf.Write([]byte{0x55, 0x00, 0x00, 0x55}); err != nil {
		t.Fatal(err)
	}
	_, err := decodeCommand(buf)
	if err != errProtocolViolation {
		t.Errorf("decodeCommand with type 0x55 => %v; want errProtocolViolation", err)
	}
}

func TestDecodeCommandBadChecksum(t *testing.T) {
	frame := clientFrame(typeRpleth, cmdPing, nil)
	frame[len(frame)-1] ^= 0xff

	buf := newFramingBuffer()
	if err := buf.Write(frame); err != nil {
		t.Fatal(err)
	}
	p, err := decodeCommand(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Good || p.Status != statusBadChecksum {
		t.Errorf("decode of corrupted frame => Good=%v Status=%#x; want Good with statusBadChecksum", p.Good, p.Status)
	}
	if buf.Len() != 0 {
		t.Errorf("corrupted frame not consumed; %d bytes left", buf.Len())
	}
}

// Feeding a frame one byte at a time must yield the same packet as
// feeding it all at once, and no false Good decode along the way.
func TestDecodeCommandByteByByte(t *testing.T) {
	frame := clientFrame(typeHID, cmdGetCSN, []byte{0xde, 0xad, 0xbe, 0xef})
	buf := newFramingBuffer()

	for i, c := range frame {
		p, err := decodeCommand(buf)
		if err != nil {
			t.Fatal(err)
		}
		if p.Good {
			t.Fatalf("Good decode after %d of %d bytes", i, len(frame))
		}
		if err := buf.Write([]byte{c}); err != nil {
			t.Fatal(err)
		}
	}

	p, err := decodeCommand(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Good || p.Command != cmdGetCSN || !bytes.Equal(p.Data, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("byte-by-byte decode => %+v", p)
	}
}

// decode(encode(P)) must preserve every field, for both directions.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	var tests = []rplethPacket{
		{Sender: senderClient, Type: typeRpleth, Command: cmdPing, Data: []byte{}, Good: true},
		{Sender: senderClient, Type: typeHID, Command: cmdSetCardType, Data: []byte{0x02}, DataLen: 1, Good: true},
		{Sender: senderServer, Status: statusSuccess, Type: typeHID, Command: cmdBadge, Data: []byte{0x40, 0x61, 0x81, 0x80}, DataLen: 4, Good: true},
		{Sender: senderServer, Status: statusUnsupported, Type: typeLCD, Command: cmdDisplay, Data: []byte{}, Good: true},
	}

	out := make([]byte, ringBufferSize)
	for _, p := range tests {
		n, err := encodeCommand(p, out)
		if err != nil {
			t.Fatal(err)
		}

		wire := out[:n]
		var got rplethPacket
		if p.Sender == senderServer {
			got.Sender = senderServer
			got.Status = wire[0]
			wire = wire[1:]
		}
		buf := newFramingBuffer()
		if err := buf.Write(wire); err != nil {
			t.Fatal(err)
		}
		dec, err := decodeCommand(buf)
		if err != nil {
			t.Fatal(err)
		}
		got.Type = dec.Type
		got.Command = dec.Command
		got.DataLen = dec.DataLen
		got.Data = dec.Data
		got.Good = dec.Good

		p.DataLen = byte(len(p.Data))
		if !reflect.DeepEqual(got, p) {
			t.Errorf("round-trip => %+v; want %+v", got, p)
		}
	}
}

func TestEncodeCommandOverflow(t *testing.T) {
	p := rplethPacket{Sender: senderServer, Type: typeHID, Command: cmdBadge, Data: make([]byte, 200), Good: true}

	if _, err := encodeCommand(p, make([]byte, 16)); err != errBufferFull {
		t.Errorf("encode into undersized buffer => %v; want errBufferFull", err)
	}
	if _, err := encodeCommand(p, make([]byte, ringBufferSize)); err != nil {
		t.Errorf("encode into full-size buffer => %v; want nil", err)
	}
}

func TestProcessClientPacket(t *testing.T) {
	led := &fakeDevice{}
	buzz := &fakeDevice{}
	srv := newRplethServer(":0", &cardQueue{})
	srv.greenLed = led
	srv.buzzer = buzz

	var tests = []struct {
		typ, cmd byte
		data     []byte
		status   byte
	}{
		{typeRpleth, cmdPing, nil, statusSuccess},
		{typeRpleth, 0x7f, nil, statusUnsupported},
		{typeHID, cmdGreenLed, []byte{1}, statusSuccess},
		{typeHID, cmdBeep, []byte{0}, statusSuccess},
		{typeHID, cmdBeep, nil, statusBadSize},
		{typeHID, cmdBeep, []byte{1, 2}, statusBadSize},
		{typeHID, cmdGetCSN, nil, statusUnsupported},
		{typeLCD, cmdDisplay, []byte("hi"), statusUnsupported},
	}

	for _, tt := range tests {
		p := rplethPacket{Sender: senderClient, Type: tt.typ, Command: tt.cmd, DataLen: byte(len(tt.data)), Data: tt.data, Good: true}
		r := processClientPacket(srv, p)
		if r.Sender != senderServer {
			t.Errorf("process(%#x/%#x) response sender => %v; want server", tt.typ, tt.cmd, r.Sender)
		}
		if r.Status != tt.status {
			t.Errorf("process(%#x/%#x) status => %#x; want %#x", tt.typ, tt.cmd, r.Status, tt.status)
		}
	}

	if led.onCount() != 1 {
		t.Errorf("green led turned on %d times; want 1", led.onCount())
	}
	if buzz.offCount() != 1 {
		t.Errorf("buzzer turned off %d times; want 1", buzz.offCount())
	}

	// No buzzer configured: driving it reports the missing device.
	srv.buzzer = nil
	p := rplethPacket{Sender: senderClient, Type: typeHID, Command: cmdBeep, DataLen: 1, Data: []byte{1}, Good: true}
	if r := processClientPacket(srv, p); r.Status != statusBadDevice {
		t.Errorf("beep without buzzer => %#x; want statusBadDevice", r.Status)
	}

	// A bad-checksum packet is echoed back with its status untouched.
	p = rplethPacket{Sender: senderClient, Type: typeRpleth, Command: cmdPing, Status: statusBadChecksum, Good: true}
	if r := processClientPacket(srv, p); r.Status != statusBadChecksum {
		t.Errorf("bad-checksum echo => %#x; want statusBadChecksum", r.Status)
	}
}
