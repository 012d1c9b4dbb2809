// Stress test comparing CPU broad-phase paths against the GPU compute path
package main

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"kine3d/internal/compute"
	"kine3d/internal/physics"
)

func main() {
	sys, err := compute.NewSystem()
	if err != nil {
		panic(fmt.Sprintf("Failed to init compute: %v", err))
	}
	defer sys.Release()

	info := sys.AdapterInfo()
	fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)

	// Test various collider counts
	testCounts := []int{100, 500, 1000, 2000, 5000, 10000, 20000}

	for _, count := range testCounts {
		testBroadPhase(sys, count)
	}
}

func testBroadPhase(sys *compute.System, count int) {
	// Generate random boxes in a bounded space
	boxes := make([]compute.Box, count)
	bounds := make([]physics.AABB, count)
	rng := rand.New(rand.NewSource(42)) // Consistent results

	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50.0) + float32(count)/100.0

	for i := range boxes {
		center := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize - spawnSize/2,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		edge := 1.0 + rng.Float32() // 1.0 to 2.0 edge length
		size := rl.Vector3{X: edge, Y: edge, Z: edge}
		bounds[i] = physics.NewAABBFromCenter(center, size)
		boxes[i] = compute.Box{
			MinX: bounds[i].Min.X, MinY: bounds[i].Min.Y, MinZ: bounds[i].Min.Z,
			MaxX: bounds[i].Max.X, MaxY: bounds[i].Max.Y, MaxZ: bounds[i].Max.Z,
		}
	}

	// GPU broad-phase
	maxPairs := count * 20 // Generous pair buffer
	bp, err := compute.NewBroadPhase(sys, count, maxPairs)
	if err != nil {
		fmt.Printf("%5d colliders: GPU ERROR: %v\n", count, err)
		return
	}
	defer bp.Release()

	// Warm up
	bp.DetectPairs(boxes)

	// Time GPU
	gpuStart := time.Now()
	const gpuIterations = 10
	var gpuPairs []compute.CollisionPair
	for i := 0; i < gpuIterations; i++ {
		gpuPairs, _ = bp.DetectPairs(boxes)
	}
	gpuTime := time.Since(gpuStart) / gpuIterations

	// Time CPU naive O(n²)
	naiveStart := time.Now()
	const cpuIterations = 10
	var naivePairCount int
	for iter := 0; iter < cpuIterations; iter++ {
		naivePairCount = 0
		for i := 0; i < len(bounds); i++ {
			for j := i + 1; j < len(bounds); j++ {
				if bounds[i].Intersects(bounds[j]) {
					naivePairCount++
				}
			}
		}
	}
	naiveTime := time.Since(naiveStart) / cpuIterations

	// Time CPU spatial hash: register everything and flush, the same work
	// the registry does per frame
	gridStart := time.Now()
	var gridPairCount int
	for iter := 0; iter < cpuIterations; iter++ {
		registry := physics.NewRegistry()
		for i := range bounds {
			registry.Register(&physics.Collider{Box: bounds[i], Enabled: true})
		}
		registry.Flush()
		gridPairCount = registry.ActivePairCount()
	}
	gridTime := time.Since(gridStart) / cpuIterations

	speedup := float64(gridTime) / float64(gpuTime)

	fmt.Printf("%5d colliders: GPU %8v (%4d pairs) | grid %8v (%4d pairs) | naive %10v (%4d pairs) | %.1fx vs grid\n",
		count, gpuTime.Round(time.Microsecond), len(gpuPairs),
		gridTime.Round(time.Microsecond), gridPairCount,
		naiveTime.Round(time.Microsecond), naivePairCount, speedup)
}
