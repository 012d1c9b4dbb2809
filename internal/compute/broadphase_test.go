package compute

import (
	"testing"
	"unsafe"
)

// The WGSL Box struct is two vec3<f32> fields, 16-byte aligned each.
// The Go record must match that layout exactly or uploads read garbage.
func TestBoxMatchesShaderLayout(t *testing.T) {
	if size := unsafe.Sizeof(Box{}); size != boxStride {
		t.Errorf("Expected Box to be %d bytes, got %d", boxStride, size)
	}
	if off := unsafe.Offsetof(Box{}.MaxX); off != 16 {
		t.Errorf("Expected MaxX at offset 16, got %d", off)
	}
}

func TestCollisionPairMatchesShaderLayout(t *testing.T) {
	if size := unsafe.Sizeof(CollisionPair{}); size != pairStride {
		t.Errorf("Expected CollisionPair to be %d bytes, got %d", pairStride, size)
	}
	if off := unsafe.Offsetof(CollisionPair{}.B); off != 4 {
		t.Errorf("Expected B at offset 4, got %d", off)
	}
}

func TestNewBroadPhaseNilSystem(t *testing.T) {
	bp, err := NewBroadPhase(nil, 100, 1000)
	if err != nil {
		t.Errorf("Expected no error for nil system, got %v", err)
	}
	if bp != nil {
		t.Error("Expected nil broad-phase when compute is unavailable")
	}
}
