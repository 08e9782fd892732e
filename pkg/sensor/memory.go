package sensor

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
)

// Memory reads physical memory usage.
type Memory struct {
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemory returns a Memory reader.
func NewMemory() *Memory {
	return &Memory{virtual: mem.VirtualMemoryWithContext}
}

// Sample implements Sampler.
func (m *Memory) Sample(ctx context.Context) (MemorySnapshot, error) {
	v, err := m.virtual(ctx)
	if err != nil {
		return MemorySnapshot{}, pkgerrors.Wrap(err, "failed to read memory usage")
	}
	return MemorySnapshot{Used: v.Used, Total: v.Total}, nil
}
