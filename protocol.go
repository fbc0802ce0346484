package main

import (
	"errors"

	"rplethub/hardware"
)

// Wire layout of the Rpleth protocol:
//
//	client -> server:  type | command | dataLen | data[dataLen] | csum
//	server -> client:  status | type | command | dataLen | data[dataLen] | csum
//
// csum is the XOR of every byte of the frame except the status.

const (
	clientHeaderSize    = 3                    // type, command, dataLen
	clientFrameOverhead = clientHeaderSize + 1 // plus the checksum byte
)

var errProtocolViolation = errors.New("rpleth: protocol violation")

// decodeCommand attempts to parse one complete client command from the
// front of buf.
//
// An incomplete frame returns a packet with Good unset and a nil error,
// consuming nothing; the caller waits for more bytes. A structurally
// invalid frame (unknown type code) returns errProtocolViolation and the
// connection must be closed. A frame with a checksum mismatch is
// consumed and returned Good with Status set to statusBadChecksum, so
// the client gets told while the connection stays open.
func decodeCommand(buf *framingBuffer) (rplethPacket, error) {
	p := rplethPacket{Sender: senderClient}
	if buf.Len() < clientFrameOverhead {
		return p, nil
	}
	header := buf.Peek(clientHeaderSize)
	if header[0] >= maxType {
		return p, errProtocolViolation
	}
	dataLen := int(header[2])
	if buf.Len() < clientFrameOverhead+dataLen {
		return p, nil
	}
	frame := buf.Peek(clientFrameOverhead + dataLen)
	p.Type = frame[0]
	p.Command = frame[1]
	p.DataLen = frame[2]
	p.Data = frame[clientHeaderSize : clientHeaderSize+dataLen]
	p.Good = true
	if frame[clientHeaderSize+dataLen] != p.checksum() {
		p.Status = statusBadChecksum
	}
	buf.Consume(clientFrameOverhead + dataLen)
	return p, nil
}

// processClientPacket turns a decoded client command into the response
// to send back. Commands the server does not implement inside a known
// type yield statusUnsupported; the connection stays open.
func processClientPacket(srv *RplethServer, p rplethPacket) rplethPacket {
	r := p
	r.Sender = senderServer
	if p.Status == statusBadChecksum {
		return r
	}
	switch p.Type {
	case typeRpleth:
		switch p.Command {
		case cmdPing:
			r.Status = statusSuccess
		default:
			r.Status = statusUnsupported
		}
	case typeHID:
		switch p.Command {
		case cmdBeep:
			r.Status = srv.driveDevice(srv.buzzer, p.Data)
		case cmdGreenLed:
			r.Status = srv.driveDevice(srv.greenLed, p.Data)
		default:
			r.Status = statusUnsupported
		}
	default:
		r.Status = statusUnsupported
	}
	return r
}

// driveDevice turns d on or off according to a one-byte payload
// (0 = off, anything else = on).
func (srv *RplethServer) driveDevice(d hardware.Device, data []byte) byte {
	if len(data) != 1 {
		return statusBadSize
	}
	if d == nil {
		return statusBadDevice
	}
	var err error
	if data[0] == 0 {
		err = d.TurnOff()
	} else {
		err = d.TurnOn()
	}
	if err != nil {
		return statusFailed
	}
	return statusSuccess
}

// encodeCommand serializes p into out and returns the frame size.
// Frames that would not fit return errBufferFull; callers size out to
// ringBufferSize, which always fits any packet decoded from a
// same-sized framing buffer.
func encodeCommand(p rplethPacket, out []byte) (int, error) {
	if len(p.Data) > 0xff {
		return 0, errBufferFull
	}
	n := clientFrameOverhead + len(p.Data)
	if p.Sender == senderServer {
		n++
	}
	if n > len(out) {
		return 0, errBufferFull
	}
	i := 0
	if p.Sender == senderServer {
		out[i] = p.Status
		i++
	}
	p.DataLen = byte(len(p.Data))
	out[i] = p.Type
	out[i+1] = p.Command
	out[i+2] = p.DataLen
	copy(out[i+clientHeaderSize:], p.Data)
	out[i+clientHeaderSize+len(p.Data)] = p.checksum()
	return n, nil
}
