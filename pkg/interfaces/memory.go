package interfaces

import (
	"oomguard/internal/model"
)

// MemorySampler reads system-wide memory statistics. It abstracts the OS
// sensor so tests can substitute a deterministic fake.
type MemorySampler interface {
	Sample() (model.MemorySnapshot, error)
}

// SnapshotReader exposes the latest memory snapshot on demand, without
// waiting for the next monitor tick.
type SnapshotReader interface {
	GetMemorySnapshot() model.MemorySnapshot
}
