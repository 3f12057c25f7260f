// Package sysmon samples host resource usage and network interface state
// for the monitored server.
package sysmon

import (
	"fmt"
	"net"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Sample is one point-in-time reading of host resource usage.
type Sample struct {
	Timestamp       time.Time            `json:"timestamp"`
	CPUPercent      float64              `json:"cpu_percent"`
	MemoryPercent   float64              `json:"memory_percent"`
	MemoryAvailable uint64               `json:"memory_available"`
	DiskPercent     float64              `json:"disk_percent"`
	DiskFree        uint64               `json:"disk_free"`
	Interfaces      map[string]Interface `json:"interfaces"`
}

// Interface describes one IPv4-addressed network interface.
type Interface struct {
	IP      string `json:"ip"`
	Netmask string `json:"netmask"`
}

// Sampler reads host statistics. The zero value samples the root filesystem.
type Sampler struct {
	// DiskPath is the mount point measured for disk usage. Defaults to "/".
	DiskPath string
}

// Sample takes one reading of CPU, memory, disk and interface state. A
// failing probe fails the whole sample; the caller treats that as a skipped
// reading, never as a fatal condition.
func (s *Sampler) Sample() (*Sample, error) {
	path := s.DiskPath
	if path == "" {
		path = "/"
	}

	cpuPercents, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("failed to sample cpu: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to sample memory: %w", err)
	}
	du, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to sample disk: %w", err)
	}

	sample := &Sample{
		Timestamp:       time.Now(),
		MemoryPercent:   vm.UsedPercent,
		MemoryAvailable: vm.Available,
		DiskPercent:     du.UsedPercent,
		DiskFree:        du.Free,
		Interfaces:      interfaces(),
	}
	if len(cpuPercents) > 0 {
		sample.CPUPercent = cpuPercents[0]
	}
	return sample, nil
}

// interfaces collects the IPv4 address and netmask of every interface that
// has one. Enumeration failures just yield an empty map.
func interfaces() map[string]Interface {
	result := make(map[string]Interface)
	ifaces, err := net.Interfaces()
	if err != nil {
		return result
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			result[iface.Name] = Interface{
				IP:      ipnet.IP.String(),
				Netmask: net.IP(ipnet.Mask).String(),
			}
			break
		}
	}
	return result
}
