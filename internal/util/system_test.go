package util

import (
	"runtime"
	"testing"
)

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", info.Arch, runtime.GOARCH)
	}
	if info.LogicalCores != runtime.NumCPU() {
		t.Errorf("LogicalCores = %d, want %d", info.LogicalCores, runtime.NumCPU())
	}
	if info.PhysicalCores <= 0 {
		t.Errorf("PhysicalCores = %d, want > 0", info.PhysicalCores)
	}
	if info.PhysicalCores > info.LogicalCores {
		t.Errorf("PhysicalCores = %d > LogicalCores = %d", info.PhysicalCores, info.LogicalCores)
	}
}
