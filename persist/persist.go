// Package persist implements the snapshot file format for bankergo.
//
// A snapshot file is self-describing:
//
//	magic "BGS0" | version u16 | compression u8 | codec name (u8 len + bytes)
//	payload length u64 | payload | sha256(payload)
//
// The payload is the codec-encoded snapshot, optionally compressed. The
// checksum covers the stored (possibly compressed) payload so corruption is
// detected before any decoding runs.
package persist

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/bankergo/codec"
)

// Compression selects the payload compression scheme.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = iota
	// CompressionZstd compresses the payload with zstd.
	CompressionZstd
	// CompressionLZ4 compresses the payload with lz4.
	CompressionLZ4
)

var (
	snapshotMagic   = [4]byte{'B', 'G', 'S', '0'}
	snapshotVersion = uint16(1)

	// ErrChecksum indicates a snapshot whose stored checksum does not
	// match its payload.
	ErrChecksum = errors.New("snapshot checksum mismatch")
)

// Options configures snapshot writing.
type Options struct {
	// Codec encodes the snapshot payload. Defaults to codec.Default.
	Codec codec.Codec

	// Compression selects the payload compression. Default none.
	Compression Compression
}

// Encode renders v as self-describing snapshot bytes.
func Encode(v any, opts Options) ([]byte, error) {
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	payload, err := opts.Codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	payload, err = compress(payload, opts.Compression)
	if err != nil {
		return nil, err
	}

	name := opts.Codec.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec name %q too long", name)
	}

	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	binary.Write(&buf, binary.LittleEndian, snapshotVersion)
	buf.WriteByte(byte(opts.Compression))
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	binary.Write(&buf, binary.LittleEndian, uint64(len(payload)))
	buf.Write(payload)
	sum := sha256.Sum256(payload)
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

// Decode parses snapshot bytes produced by Encode into v.
func Decode(data []byte, v any) error {
	return Read(bytes.NewReader(data), v)
}

// Save writes v as a snapshot file at path. The file is written to a
// temporary sibling and renamed, so a crash never leaves a half-written
// snapshot under the final name.
func Save(path string, v any, opts Options) error {
	data, err := Encode(v, opts)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file at path into v.
func Load(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Read(f, v)
}

// Read decodes a snapshot from r into v. It verifies the checksum before
// decompressing or decoding.
func Read(r io.Reader, v any) error {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if magic != snapshotMagic {
		return errors.New("unsupported snapshot format: invalid header magic")
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %d", version)
	}

	var meta [2]byte // compression + codec name length
	if _, err := io.ReadFull(r, meta[:]); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	comp := Compression(meta[0])

	nameBuf := make([]byte, meta[1])
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return fmt.Errorf("failed to read snapshot codec name: %w", err)
	}
	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return fmt.Errorf("unknown snapshot codec %q", nameBuf)
	}

	var payloadLen uint64
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("failed to read snapshot payload: %w", err)
	}

	var want [sha256.Size]byte
	if _, err := io.ReadFull(r, want[:]); err != nil {
		return fmt.Errorf("failed to read snapshot checksum: %w", err)
	}
	if sha256.Sum256(payload) != want {
		return ErrChecksum
	}

	payload, err := decompress(payload, comp)
	if err != nil {
		return err
	}
	if err := c.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return nil
}

func compress(payload []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return payload, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		out := enc.EncodeAll(payload, nil)
		enc.Close()
		return out, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, fmt.Errorf("failed to lz4-compress snapshot: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to lz4-compress snapshot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot compression %d", comp)
	}
}

func decompress(payload []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return payload, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to zstd-decompress snapshot: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
		if err != nil {
			return nil, fmt.Errorf("failed to lz4-decompress snapshot: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown snapshot compression %d", comp)
	}
}
