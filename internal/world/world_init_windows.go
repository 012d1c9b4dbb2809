//go:build windows

package world

import (
	"log"

	"kine3d/internal/compute"
)

func (w *World) initializeCompute() {
	// D3D12/Vulkan backends both behave on Windows
	sys, err := compute.NewSystem()
	if err != nil {
		log.Printf("Compute shaders unavailable: %v", err)
		return
	}
	info := sys.AdapterInfo()
	log.Printf("Compute: %s | %s | %s | %s", info.Backend, info.Vendor, info.Name, info.DeviceType)
	w.gpu = sys
	w.Backend.InitGPU(sys)
}
