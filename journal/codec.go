package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

var (
	journalMagic     = [4]byte{'B', 'G', 'J', '0'}
	headerVersion    = uint16(1)
	headerLen        = 16 // magic + version + flags + level + reserved
	maxResourceTypes = 1 << 16
)

// ErrCorrupt indicates a journal record whose checksum does not match its
// payload. A clean truncation at end-of-file is not corruption; replay stops
// there silently.
var ErrCorrupt = errors.New("journal entry corrupt")

type headerInfo struct {
	Compressed       bool
	CompressionLevel int
}

func writeHeader(w io.Writer, info headerInfo) error {
	buf := make([]byte, headerLen)
	copy(buf, journalMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], headerVersion)

	var flags uint16
	if info.Compressed {
		flags |= 1
		buf[8] = uint8(info.CompressionLevel)
	}
	binary.LittleEndian.PutUint16(buf[6:8], flags)
	// buf[9:16] reserved

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write journal header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (headerInfo, error) {
	buf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return headerInfo{}, fmt.Errorf("failed to read journal header: %w", err)
	}
	if [4]byte(buf[0:4]) != journalMagic {
		return headerInfo{}, errors.New("unsupported journal format: invalid header magic")
	}
	if v := binary.LittleEndian.Uint16(buf[4:6]); v != headerVersion {
		return headerInfo{}, fmt.Errorf("unsupported journal header version: %d", v)
	}
	flags := binary.LittleEndian.Uint16(buf[6:8])
	return headerInfo{
		Compressed:       flags&1 != 0,
		CompressionLevel: int(buf[8]),
	}, nil
}

// encodeEntry renders e as [payloadLen][crc32][payload].
func encodeEntry(e Entry) []byte {
	payloadLen := 8 + 1 + 4 + 4 + 8*len(e.Vector)
	buf := make([]byte, 8+payloadLen)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(payloadLen))

	p := buf[8:]
	binary.LittleEndian.PutUint64(p[0:8], e.SeqNum)
	p[8] = byte(e.Type)
	binary.LittleEndian.PutUint32(p[9:13], uint32(e.Claimant))
	binary.LittleEndian.PutUint32(p[13:17], uint32(len(e.Vector)))
	for i, n := range e.Vector {
		binary.LittleEndian.PutUint64(p[17+8*i:], uint64(n))
	}

	binary.LittleEndian.PutUint32(buf[4:8], crc32.ChecksumIEEE(p))
	return buf
}

// decodeEntry reads the next entry from r. It returns io.EOF on a clean end
// of stream and ErrCorrupt when a record fails its checksum.
func decodeEntry(r io.Reader) (Entry, error) {
	var frame [8]byte
	if _, err := io.ReadFull(r, frame[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, err
	}

	payloadLen := binary.LittleEndian.Uint32(frame[0:4])
	want := binary.LittleEndian.Uint32(frame[4:8])
	if payloadLen < 17 || payloadLen > uint32(17+8*maxResourceTypes) {
		return Entry{}, fmt.Errorf("%w: implausible payload length %d", ErrCorrupt, payloadLen)
	}

	p := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Torn final record from a crash mid-append.
			return Entry{}, io.EOF
		}
		return Entry{}, err
	}
	if crc32.ChecksumIEEE(p) != want {
		return Entry{}, ErrCorrupt
	}

	n := binary.LittleEndian.Uint32(p[13:17])
	if uint32(len(p)) != 17+8*n {
		return Entry{}, fmt.Errorf("%w: vector length %d does not match payload", ErrCorrupt, n)
	}

	e := Entry{
		SeqNum:   binary.LittleEndian.Uint64(p[0:8]),
		Type:     OpType(p[8]),
		Claimant: int32(binary.LittleEndian.Uint32(p[9:13])),
		Vector:   make([]int64, n),
	}
	for i := range e.Vector {
		e.Vector[i] = int64(binary.LittleEndian.Uint64(p[17+8*i:]))
	}
	return e, nil
}
