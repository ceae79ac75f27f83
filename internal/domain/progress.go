package domain

// IngestProgress is a snapshot of how far ingestion has advanced through a
// log file. The watcher logs one of these per stats interval; log entries
// carry their own timestamp.
type IngestProgress struct {
	FilePath      string
	FileSizeBytes int64
	OffsetBytes   int64
	LinesRead     uint64
	EventsParsed  uint64
}

// ParseStats counts classified events per kind across a watcher's lifetime.
type ParseStats struct {
	LinesRead    uint64
	LinesDropped uint64
	ByKind       map[EventKind]uint64
}

// NewParseStats returns an empty ParseStats with the kind map allocated.
func NewParseStats() *ParseStats {
	return &ParseStats{ByKind: make(map[EventKind]uint64)}
}

// Record counts one line and, when ev is non-nil, its event kind.
func (s *ParseStats) Record(ev Event) {
	s.LinesRead++
	if ev == nil {
		s.LinesDropped++
		return
	}
	s.ByKind[ev.Kind()]++
}
