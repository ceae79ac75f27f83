package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/torchtrack/torchtrack/internal/offset"
)

var offsetsCmd = &cobra.Command{
	Use:   "offsets",
	Short: "List saved tail positions",
	Long: `List the tail positions saved in the position store, one line per
tracked file. Useful for checking where a restart would resume.

Reads OFFSET_DB_PATH from the environment (default torchtrack.db).`,
	RunE: runOffsets,
}

func runOffsets(cmd *cobra.Command, args []string) error {
	dbPath := os.Getenv("OFFSET_DB_PATH")
	if dbPath == "" {
		dbPath = "torchtrack.db"
	}

	store, err := offset.NewBoltDBStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open position store: %w", err)
	}
	defer store.Close()

	positions, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list positions: %w", err)
	}

	if len(positions) == 0 {
		fmt.Println("no saved positions")
		return nil
	}

	paths := make([]string, 0, len(positions))
	for path := range positions {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		pos := positions[path]
		fmt.Printf("%s\toffset=%d\tsize=%d\n", path, pos.Offset, pos.Size)
	}
	return nil
}
