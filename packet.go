package main

// sender tells which side of the link produced a packet; it decides
// whether the status byte is present on the wire.
type sender uint8

const (
	senderClient sender = iota
	senderServer
)

// Packet type codes. Anything at or beyond maxType is a protocol
// violation.
const (
	typeRpleth byte = 0x00
	typeHID    byte = 0x01
	typeLCD    byte = 0x02
	maxType    byte = 0x03
)

// Rpleth-type commands.
const (
	cmdReset byte = 0x01
	cmdPing  byte = 0x02
)

// HID-type commands.
const (
	cmdBeep          byte = 0x00
	cmdGreenLed      byte = 0x01
	cmdCom           byte = 0x03
	cmdWaitInsertion byte = 0x04
	cmdWaitRemoval   byte = 0x05
	cmdConnect       byte = 0x06
	cmdDisconnect    byte = 0x07
	cmdGetReaderType byte = 0x08
	cmdGetCSN        byte = 0x09
	cmdSetCardType   byte = 0x0A
	cmdBadge         byte = 0x0B
)

// LCD-type commands.
const (
	cmdDisplay byte = 0x00
)

// Status codes carried on server->client responses.
const (
	statusSuccess     byte = 0x00
	statusFailed      byte = 0x01
	statusBadChecksum byte = 0x02
	statusTimeout     byte = 0x03
	statusBadSize     byte = 0x04
	statusBadDevice   byte = 0x05
	statusUnsupported byte = 0x06
)

// rplethPacket is one framed protocol unit. It is built either by the
// codec while decoding a client command, or by the server when
// synthesizing a response or a badge event; it is never persisted.
// len(Data) == int(DataLen) whenever Good is true.
type rplethPacket struct {
	Sender  sender
	Status  byte
	Type    byte
	Command byte
	DataLen byte
	Data    []byte
	Good    bool
}

// checksum is the XOR of the type, command, length and payload bytes.
// The status byte is not covered; it never crosses the wire in the
// client->server direction.
func (p rplethPacket) checksum() byte {
	c := p.Type ^ p.Command ^ p.DataLen
	for _, b := range p.Data {
		c ^= b
	}
	return c
}
