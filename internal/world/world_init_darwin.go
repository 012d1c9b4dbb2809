//go:build darwin

package world

import (
	"log"

	"kine3d/internal/compute"
)

func (w *World) initializeCompute() {
	// Metal backend works fine here
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
