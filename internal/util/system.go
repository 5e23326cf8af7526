package util

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo contains information about the host system, shown at
// startup for log correlation.
type SystemInfo struct {
	Hostname      string
	OS            string
	Arch          string
	CPUModel      string
	LogicalCores  int
	PhysicalCores int
	TotalMemory   uint64
}

// GetSystemInfo collects system information. Fields that cannot be
// determined are left at their zero values.
func GetSystemInfo() SystemInfo {
	info := SystemInfo{
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		LogicalCores: runtime.NumCPU(),
	}

	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
	}
	if counts, err := cpu.Counts(false); err == nil && counts > 0 {
		info.PhysicalCores = counts
	} else {
		info.PhysicalCores = info.LogicalCores
	}
	if models, err := cpu.Info(); err == nil && len(models) > 0 {
		info.CPUModel = models[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}

	return info
}
