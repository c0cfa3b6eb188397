package archive

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/bankergo/blobstore"
)

// BlobCheckpointStore keeps the checkpoint pointer as a blob named
// "CHECKPOINT" in the same store as the snapshots.
//
// The conditional-write guarantee only holds within one process (guarded by
// a mutex); for multi-writer coordination on S3 use the DynamoDB checkpoint
// store instead.
type BlobCheckpointStore struct {
	mu    sync.Mutex
	store blobstore.BlobStore
}

var _ CheckpointStore = (*BlobCheckpointStore)(nil)

// NewBlobCheckpointStore creates a checkpoint store backed by store.
func NewBlobCheckpointStore(store blobstore.BlobStore) *BlobCheckpointStore {
	return &BlobCheckpointStore{store: store}
}

const checkpointBlob = "CHECKPOINT"

// Latest reads the checkpoint pointer.
func (s *BlobCheckpointStore) Latest(ctx context.Context) (string, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestLocked(ctx)
}

func (s *BlobCheckpointStore) latestLocked(ctx context.Context) (string, uint64, error) {
	data, err := s.store.Get(ctx, checkpointBlob)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", 0, nil
		}
		return "", 0, err
	}

	// Format: "<version> <name>\n"
	version, name, ok := parseCheckpoint(string(data))
	if !ok {
		return "", 0, errors.New("corrupt checkpoint pointer")
	}
	return name, version, nil
}

// Advance commits the pointer for version.
func (s *BlobCheckpointStore) Advance(ctx context.Context, name string, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.latestLocked(ctx)
	if err != nil {
		return err
	}
	if version != current+1 {
		return ErrConcurrentUpdate
	}

	payload := strconv.FormatUint(version, 10) + " " + name + "\n"
	return s.store.Put(ctx, checkpointBlob, []byte(payload))
}

func parseCheckpoint(data string) (uint64, string, bool) {
	data = strings.TrimSpace(data)
	idx := strings.IndexByte(data, ' ')
	if idx < 0 {
		return 0, "", false
	}
	version, err := strconv.ParseUint(data[:idx], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return version, data[idx+1:], true
}
