package render

import "github.com/go-gl/mathgl/mgl32"

// DrawBatch is one instanced draw: Count consecutive transforms starting at
// Offset in the frame's transform buffer, all using asset AssetID.
type DrawBatch struct {
	AssetID uint32
	Offset  int
	Count   int
}

// Frame is the output of one extraction. It aliases pipeline buffers and
// is only valid until the next Extract call on the same pipeline; renderers
// must upload or copy what they need before returning.
type Frame struct {
	ViewProj   mgl32.Mat4
	Transforms []mgl32.Mat4
	Batches    []DrawBatch

	Considered int // mesh instances examined
	Visible    int // instances that passed culling, before truncation
	Truncated  int // visible instances dropped by the instance cap
}

// Empty reports whether the frame has nothing to draw.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Batches) == 0
}

// Instances returns the number of transforms in the buffer.
func (f *Frame) Instances() int {
	if f == nil {
		return 0
	}
	return len(f.Transforms)
}

// Renderer consumes extracted frames, issuing one instanced draw per batch.
// Submit must be a no-op for an empty frame.
type Renderer interface {
	Submit(f *Frame)
}
