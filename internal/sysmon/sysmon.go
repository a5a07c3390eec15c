// Package sysmon samples host resource usage while destinations are being
// written: CPU, memory and the file system that receives local output.
package sysmon

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent  float64 // 0.0 .. 100.0
	MemPercent  float64 // 0.0 .. 100.0
	DiskPercent float64 // 0.0 .. 100.0, 0 when no path was sampled
	DiskFree    uint64  // bytes
}

// Sample returns system-wide CPU and memory usage. CPU usage is measured
// since the previous call. Values that cannot be read are left at zero.
func Sample() Stats {
	return Stats{CPUPercent: cpuUsage(), MemPercent: memUsage()}
}

func cpuUsage() float64 {
	pcts, err := cpu.Percent(0, false)
	if err != nil || len(pcts) == 0 {
		return 0
	}
	return pcts[0]
}

func memUsage() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return 0
	}
	return vm.UsedPercent
}

// SampleWithDisk is Sample plus the usage of the file system holding path.
func SampleWithDisk(path string) Stats {
	s := Sample()
	if usage, err := disk.Usage(ExistingDir(path)); err == nil && usage != nil {
		s.DiskPercent = usage.UsedPercent
		s.DiskFree = usage.Free
	}
	return s
}

// ExistingDir returns the closest existing ancestor directory of path.
func ExistingDir(path string) string {
	dir := filepath.Dir(path)
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
