package wsframe

import (
	"encoding/binary"
	"io"
)

// Decode reads exactly one frame starting at a frame boundary from r.
// It implements the decode contract: parse FIN/opcode from byte 0,
// MASK/length7 from byte 1, resolve the extended length (16-bit for 126,
// 64-bit for 127), read the 4-byte mask key when MASK is set, read the
// payload, and unmask it in place with payload[i] ^= key[i%4].
func Decode(r io.Reader) (*Frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	opcode := Opcode(hdr[0] & opcodeMask)
	masked := hdr[1]&maskBit != 0
	length7 := uint64(hdr[1] & lengthMask)

	var payloadLen uint64
	switch length7 {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = binary.BigEndian.Uint64(ext[:])
		if payloadLen&(1<<63) != 0 {
			return nil, ErrFrameTooLarge
		}
	default:
		payloadLen = length7
	}

	var key [4]byte
	if masked {
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return nil, err
		}
	}

	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	if masked {
		for i := range payload {
			payload[i] ^= key[i%4]
		}
	}

	if !opcode.Supported() {
		return &Frame{Opcode: opcode, Payload: payload}, ErrUnsupportedOpcode
	}

	return &Frame{Opcode: opcode, Payload: payload}, nil
}

// Encode writes one server-to-client frame: FIN=1, RSV=0, the given opcode,
// MASK=0 (server frames are never masked per RFC 6455), the payload length
// encoded with the same 7/16/64-bit schema as Decode, followed by the raw
// payload bytes. Close frames carry the close reason verbatim as payload,
// with no RFC 6455 status-code prefix — a deliberate simplification of this
// test server, see DESIGN.md.
func Encode(w io.Writer, opcode Opcode, payload []byte) error {
	var hdr []byte
	b0 := byte(opcode) | finBit

	n := uint64(len(payload))
	switch {
	case n <= 125:
		hdr = []byte{b0, byte(n)}
	case n <= 0xFFFF:
		hdr = make([]byte, 4)
		hdr[0] = b0
		hdr[1] = 126
		binary.BigEndian.PutUint16(hdr[2:4], uint16(n))
	default:
		hdr = make([]byte, 10)
		hdr[0] = b0
		hdr[1] = 127
		binary.BigEndian.PutUint64(hdr[2:10], n)
	}

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}
