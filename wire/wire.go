// Package wire implements the length-prefixed framing used by the Kafka
// wire protocol: every message is a 4-byte big-endian length followed by
// exactly that many payload bytes.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnexpectedEOF is returned when the stream ends in the middle of a
// frame, length prefix included.
var ErrUnexpectedEOF = errors.New("wire: unexpected EOF mid-frame")

// ErrFrameTooLarge is returned by an Unframer whose size bound is
// exceeded by an incoming length prefix.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum length")

// Frame prefixes payload with its 4-byte big-endian length and returns
// the framed bytes. An empty payload yields a valid zero-length
// frame.
func Frame(payload []byte) []byte {
	framed := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(framed, uint32(len(payload)))
	copy(framed[4:], payload)
	return framed
}

// WriteFrame frames payload and writes it to w as one contiguous write.
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(Frame(payload)); err != nil {
		return fmt.Errorf("wire - WriteFrame - w.Write: %w", err)
	}
	return nil
}

// Unframer reads successive frames from an underlying byte stream.
type Unframer struct {
	r      io.Reader
	maxLen uint32
	head   [4]byte
}

// NewUnframer wraps r. maxLen bounds the accepted frame length; zero
// means no bound.
func NewUnframer(r io.Reader, maxLen uint32) *Unframer {
	return &Unframer{r: r, maxLen: maxLen}
}

// Next reads one complete frame and returns its payload. A clean EOF on
// the length-prefix boundary returns io.EOF; an EOF anywhere inside a
// frame returns ErrUnexpectedEOF.
func (u *Unframer) Next() ([]byte, error) {
	if _, err := io.ReadFull(u.r, u.head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("wire - Next - read length: %w", err)
	}

	length := binary.BigEndian.Uint32(u.head[:])
	if u.maxLen > 0 && length > u.maxLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, u.maxLen)
	}
	if length == 0 {
		return []byte{}, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(u.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("wire - Next - read payload: %w", err)
	}
	return payload, nil
}
