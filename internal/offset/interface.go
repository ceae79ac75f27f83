package offset

import (
	"context"
)

// TailPosition is the persisted read state for one tracked log file: how
// many bytes have been consumed and how large the file was when they were.
// Offset never exceeds Size; a live file smaller than Size means the file
// was rotated since the position was saved.
type TailPosition struct {
	Offset int64
	Size   int64
}

// Store persists tail positions so ingestion can resume after a process
// restart without re-reading the whole file or skipping appended lines.
type Store interface {
	// Get retrieves the position for a file path.
	// Returns a zero position when none is stored.
	Get(ctx context.Context, filePath string) (TailPosition, error)

	// Set stores the position for a file path.
	Set(ctx context.Context, filePath string, pos TailPosition) error

	// Delete removes the stored position for a file path.
	Delete(ctx context.Context, filePath string) error

	// List returns all stored positions keyed by file path.
	List(ctx context.Context) (map[string]TailPosition, error)

	// Close closes the store.
	Close() error
}
