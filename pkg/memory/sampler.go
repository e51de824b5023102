package memory

import (
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"oomguard/internal/model"
)

// SysinfoSampler reads system memory statistics from the OS via gopsutil.
type SysinfoSampler struct{}

// NewSysinfoSampler creates the OS-backed memory sampler.
func NewSysinfoSampler() *SysinfoSampler {
	return &SysinfoSampler{}
}

// Sample reads total/used/free bytes. Free is the memory obtainable without
// swapping (gopsutil's Available), which is what reclamation decisions care
// about.
func (s *SysinfoSampler) Sample() (model.MemorySnapshot, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return model.MemorySnapshot{}, err
	}
	return model.MemorySnapshot{
		TotalBytes: int64(vm.Total),
		UsedBytes:  int64(vm.Used),
		FreeBytes:  int64(vm.Available),
		CapturedAt: time.Now(),
	}, nil
}
