package telemetry

import (
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo describes the machine a run is measured on.
type HostInfo struct {
	OS          string
	Platform    string
	Kernel      string
	CPUModel    string
	LogicalCPUs int
	MemoryBytes uint64
}

// DescribeHost collects what is available about the current machine. Fields
// that cannot be read are left empty.
func DescribeHost() HostInfo {
	info := HostInfo{
		OS:          runtime.GOOS + "/" + runtime.GOARCH,
		LogicalCPUs: runtime.NumCPU(),
	}
	if h, err := host.Info(); err == nil {
		info.Platform = h.Platform + " " + h.PlatformVersion
		info.Kernel = h.KernelVersion
	}
	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryBytes = vm.Total
	}
	return info
}

// LogValue implements slog.LogValuer.
func (h HostInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("os", h.OS),
		slog.String("platform", h.Platform),
		slog.String("kernel", h.Kernel),
		slog.String("cpu", h.CPUModel),
		slog.Int("logical_cpus", h.LogicalCPUs),
		slog.Uint64("memory_bytes", h.MemoryBytes),
	)
}
