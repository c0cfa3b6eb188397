package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Replay reads all entries from the journal at path in append order and
// invokes fn for each. It returns the highest sequence number seen, so the
// caller can continue the sequence with Open.
//
// A torn final record (crash mid-append) ends the replay cleanly; a checksum
// mismatch on an interior record returns ErrCorrupt.
func Replay(path string, fn func(Entry) error) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open journal for replay: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat journal: %w", err)
	}
	if info.Size() == 0 {
		return 0, nil
	}

	hdr, err := readHeader(f)
	if err != nil {
		return 0, err
	}

	var r io.Reader = bufio.NewReader(f)
	if hdr.Compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return 0, fmt.Errorf("failed to create journal decompressor: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var lastSeq uint64
	for {
		e, err := decodeEntry(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lastSeq, nil
			}
			return lastSeq, err
		}
		if e.SeqNum <= lastSeq {
			return lastSeq, fmt.Errorf("%w: sequence number %d not increasing", ErrCorrupt, e.SeqNum)
		}
		lastSeq = e.SeqNum

		if err := fn(e); err != nil {
			return lastSeq, err
		}
	}
}
