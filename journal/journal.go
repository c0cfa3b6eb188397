package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Journal is an append-only log of allocator mutations.
//
// Appends are serialized by the allocator's pool lock; the internal mutex
// only guards against a concurrent Close.
type Journal struct {
	mu         sync.Mutex
	file       *os.File
	bufWriter  *bufio.Writer
	writer     io.Writer // bufWriter, or compressor on top of it
	compressor *zstd.Encoder
	seqNum     uint64
	path       string
	opts       Options
	closed     bool
}

// Open creates or appends to the journal file at path.
//
// An existing journal must be replayed (see Replay) before appending; Open
// positions the write cursor at the end of the file and continues the
// sequence from nextSeq.
func Open(path string, nextSeq uint64, optFns ...func(*Options)) (*Journal, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.CompressionLevel <= 0 {
		opts.CompressionLevel = 3
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}

	j := &Journal{
		file:      f,
		bufWriter: bufio.NewWriter(f),
		path:      path,
		opts:      opts,
		seqNum:    nextSeq,
	}

	if info.Size() == 0 {
		if err := writeHeader(j.bufWriter, headerInfo{Compressed: opts.Compress, CompressionLevel: opts.CompressionLevel}); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		hdr, err := readHeader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		if hdr.Compressed != opts.Compress {
			f.Close()
			return nil, fmt.Errorf("journal compression mismatch: file compressed=%v, options compressed=%v", hdr.Compressed, opts.Compress)
		}
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to seek journal: %w", err)
		}
	}

	j.writer = j.bufWriter
	if opts.Compress {
		enc, err := zstd.NewWriter(j.bufWriter, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.CompressionLevel)))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create journal compressor: %w", err)
		}
		j.compressor = enc
		j.writer = enc
	}

	return j, nil
}

// Append writes one entry, assigns it the next sequence number, and flushes
// according to the configured SyncMode. It returns the assigned sequence
// number.
func (j *Journal) Append(op OpType, claimant int32, vec []int64) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return 0, fmt.Errorf("journal %s is closed", j.path)
	}

	j.seqNum++
	e := Entry{SeqNum: j.seqNum, Type: op, Claimant: claimant, Vector: vec}

	if _, err := j.writer.Write(encodeEntry(e)); err != nil {
		return 0, fmt.Errorf("failed to append journal entry %d: %w", e.SeqNum, err)
	}

	if j.opts.SyncMode == SyncAlways {
		if err := j.flushLocked(); err != nil {
			return 0, err
		}
		if err := j.file.Sync(); err != nil {
			return 0, fmt.Errorf("failed to fsync journal: %w", err)
		}
	}

	return e.SeqNum, nil
}

// SeqNum returns the sequence number of the last appended entry.
func (j *Journal) SeqNum() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seqNum
}

// Flush pushes buffered entries to the OS without forcing an fsync.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	if j.compressor != nil {
		if err := j.compressor.Flush(); err != nil {
			return fmt.Errorf("failed to flush journal compressor: %w", err)
		}
	}
	if err := j.bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush journal buffer: %w", err)
	}
	return nil
}

// Close flushes and closes the journal. Further appends fail.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if j.compressor != nil {
		if err := j.compressor.Close(); err != nil {
			j.file.Close()
			return fmt.Errorf("failed to close journal compressor: %w", err)
		}
	}
	if err := j.bufWriter.Flush(); err != nil {
		j.file.Close()
		return fmt.Errorf("failed to flush journal buffer: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		j.file.Close()
		return fmt.Errorf("failed to fsync journal: %w", err)
	}
	return j.file.Close()
}
