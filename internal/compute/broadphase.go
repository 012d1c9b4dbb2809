// GPU-accelerated broad-phase collision detection
package compute

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BroadPhase handles GPU-accelerated collision pair detection.
// Tests axis-aligned bounding boxes so elongated bodies don't
// produce the false positives a bounding sphere would.
type BroadPhase struct {
	system   *System
	pipeline *Pipeline

	// Buffers and the bind group are created once and reused every frame.
	boxBuffer    *Buffer // Input: AABB min/max per body
	pairBuffer   *Buffer // Output: overlapping index pairs
	countBuffer  *Buffer // Output: number of pairs found
	countUniform *Buffer // Input: number of boxes this frame

	bindGroup *wgpu.BindGroup

	maxBoxes int
	maxPairs int
}

// Box is an axis-aligned bounding box packed for the GPU.
// Layout matches the WGSL struct: two vec3<f32>, each padded to 16 bytes.
type Box struct {
	MinX, MinY, MinZ, Pad0 float32
	MaxX, MaxY, MaxZ, Pad1 float32
}

// CollisionPair represents two objects that may be colliding.
type CollisionPair struct {
	A, B uint32
}

const boxStride = 32
const pairStride = 8

const broadPhaseShader = `
// Broad-phase collision detection shader
// Each thread checks one box against all others with higher indices
// This gives us n*(n-1)/2 checks with no duplicates

struct Box {
    min: vec3<f32>,
    max: vec3<f32>,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> boxes: array<Box>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> boxCount: u32;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= boxCount) {
        return;
    }

    let boxA = boxes[i];

    // Check against all boxes with higher index (avoids duplicates)
    for (var j = i + 1u; j < boxCount; j = j + 1u) {
        let boxB = boxes[j];

        // AABB overlap test
        if (all(boxA.min <= boxB.max) && all(boxB.min <= boxA.max)) {
            // Collision! Atomically add to output
            let idx = atomicAdd(&pairCount, 1u);

            // Bounds check (don't overflow pair buffer)
            if (idx < arrayLength(&pairs)) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

// NewBroadPhase creates a GPU broad-phase system.
// maxBoxes: maximum number of bodies to track
// maxPairs: maximum collision pairs to output (should be generous, e.g., maxBoxes * 20)
// A nil system returns (nil, nil) so callers can stay on the CPU path.
func NewBroadPhase(sys *System, maxBoxes, maxPairs int) (*BroadPhase, error) {
	if sys == nil {
		return nil, nil // Compute not available
	}

	pipeline, err := sys.CreatePipeline("broadphase", broadPhaseShader, "main")
	if err != nil {
		return nil, err
	}

	bp := &BroadPhase{
		system:   sys,
		pipeline: pipeline,
		maxBoxes: maxBoxes,
		maxPairs: maxPairs,
	}

	bp.boxBuffer, err = sys.CreateBuffer("broadphase_boxes", uint64(maxBoxes*boxStride),
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	bp.pairBuffer, err = sys.CreateBuffer("broadphase_pairs", uint64(maxPairs*pairStride),
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		bp.Release()
		return nil, err
	}

	bp.countBuffer, err = sys.CreateBuffer("broadphase_pair_count", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		bp.Release()
		return nil, err
	}

	bp.countUniform, err = sys.CreateBuffer("broadphase_box_count", 4,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		bp.Release()
		return nil, err
	}

	bp.bindGroup, err = sys.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "broadphase_bindgroup",
		Layout: pipeline.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bp.boxBuffer.buffer, Size: bp.boxBuffer.size},
			{Binding: 1, Buffer: bp.pairBuffer.buffer, Size: bp.pairBuffer.size},
			{Binding: 2, Buffer: bp.countBuffer.buffer, Size: bp.countBuffer.size},
			{Binding: 3, Buffer: bp.countUniform.buffer, Size: bp.countUniform.size},
		},
	})
	if err != nil {
		bp.Release()
		return nil, err
	}

	return bp, nil
}

// DetectPairs finds all potentially overlapping pairs.
// Returned indices correspond to the input box order.
func (bp *BroadPhase) DetectPairs(boxes []Box) ([]CollisionPair, error) {
	if len(boxes) == 0 {
		return nil, nil
	}
	if len(boxes) > bp.maxBoxes {
		boxes = boxes[:bp.maxBoxes]
	}

	// Upload box data, reset the pair counter, set this frame's box count
	boxCount := uint32(len(boxes))
	bp.system.WriteBuffer(bp.boxBuffer, 0, ToBytes(boxes))
	bp.system.WriteBuffer(bp.countBuffer, 0, ToBytes([]uint32{0}))
	bp.system.WriteBuffer(bp.countUniform, 0, ToBytes([]uint32{boxCount}))

	if err := bp.dispatch(boxCount); err != nil {
		return nil, err
	}

	// Read back pair count
	countData, err := bp.system.ReadBuffer(bp.countBuffer)
	if err != nil {
		return nil, err
	}
	pairCount := int(FromBytes[uint32](countData)[0])

	if pairCount == 0 {
		return nil, nil
	}

	// The shader keeps counting past the buffer end but stops writing
	if pairCount > bp.maxPairs {
		pairCount = bp.maxPairs
	}

	// Read back pairs
	pairData, err := bp.system.ReadBuffer(bp.pairBuffer)
	if err != nil {
		return nil, err
	}

	pairs := make([]CollisionPair, pairCount)
	copy(pairs, FromBytes[CollisionPair](pairData)[:pairCount])

	return pairs, nil
}

// dispatch submits one broad-phase pass over boxCount boxes.
func (bp *BroadPhase) dispatch(boxCount uint32) error {
	encoder, err := bp.system.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(bp.pipeline.pipeline)
	pass.SetBindGroup(0, bp.bindGroup, nil)
	workgroups := (boxCount + 255) / 256
	pass.DispatchWorkgroups(workgroups, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commands.Release()

	bp.system.queue.Submit(commands)
	return nil
}

// Release frees GPU resources. The pipeline stays in the system cache.
func (bp *BroadPhase) Release() {
	if bp.bindGroup != nil {
		bp.bindGroup.Release()
		bp.bindGroup = nil
	}
	if bp.boxBuffer != nil {
		bp.boxBuffer.Release()
		bp.boxBuffer = nil
	}
	if bp.pairBuffer != nil {
		bp.pairBuffer.Release()
		bp.pairBuffer = nil
	}
	if bp.countBuffer != nil {
		bp.countBuffer.Release()
		bp.countBuffer = nil
	}
	if bp.countUniform != nil {
		bp.countUniform.Release()
		bp.countUniform = nil
	}
}
