package sensor

import (
	"context"
	"errors"
	"io/fs"

	pkgerrors "github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
)

// Disk reads the usage of one mount point.
type Disk struct {
	path  string
	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDisk returns a Disk reader for path, "/" if empty.
func NewDisk(path string) *Disk {
	if path == "" {
		path = "/"
	}
	return &Disk{path: path, usage: disk.UsageWithContext}
}

// Sample implements Sampler.
func (d *Disk) Sample(ctx context.Context) (DiskSnapshot, error) {
	u, err := d.usage(ctx, d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DiskSnapshot{}, pkgerrors.Wrapf(ErrUnavailable, "mount point %s does not exist", d.path)
	}
	if err != nil {
		return DiskSnapshot{}, pkgerrors.Wrapf(err, "failed to read disk usage of %s", d.path)
	}
	return DiskSnapshot{Path: d.path, UsedPercent: u.UsedPercent}, nil
}
