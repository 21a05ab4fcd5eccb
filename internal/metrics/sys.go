package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
)

// SysHealth is a point-in-time snapshot of the process for the admin report.
type SysHealth struct {
	AllocMB      uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DataDiskSize string
}

// GetSysHealth reads runtime memory stats and sums the size of dataPath.
// A missing path counts as empty.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc >> 20,
		SysMB:        m.Sys >> 20,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: humanBytes(dirSize(dataPath)),
	}
}

// Report renders the snapshot as plain text lines.
func (h SysHealth) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Memory: %d MB in use, %d MB from OS\n", h.AllocMB, h.SysMB)
	fmt.Fprintf(&sb, "GC cycles: %d\n", h.NumGC)
	fmt.Fprintf(&sb, "Goroutines: %d\n", h.Goroutines)
	fmt.Fprintf(&sb, "Data on disk: %s", h.DataDiskSize)
	return sb.String()
}

func dirSize(root string) int64 {
	var size int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
