package render

import "go.uber.org/zap"

// LogRenderer is a headless renderer: it accounts for the draws a GPU
// backend would issue and logs a summary every n frames.
type LogRenderer struct {
	every  int
	frames int

	draws     int
	instances int
	uploads   int

	log *zap.Logger
}

func NewLogRenderer(every int, log *zap.Logger) *LogRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogRenderer{every: every, log: log}
}

func (r *LogRenderer) Submit(f *Frame) {
	r.frames++
	if !f.Empty() {
		r.uploads++
		for _, b := range f.Batches {
			r.draws++
			r.instances += b.Count
		}
	}
	if r.every <= 0 || r.frames%r.every != 0 {
		return
	}
	r.log.Debug("frame stats",
		zap.Int("frames", r.frames),
		zap.Int("batches", len(frameBatches(f))),
		zap.Int("instances", f.Instances()),
		zap.Int("considered", frameConsidered(f)),
		zap.Int("draws_total", r.draws),
		zap.Int("uploads_total", r.uploads))
}

// Stats returns cumulative frames, buffer uploads, draw calls and instances.
func (r *LogRenderer) Stats() (frames, uploads, draws, instances int) {
	return r.frames, r.uploads, r.draws, r.instances
}

func frameBatches(f *Frame) []DrawBatch {
	if f == nil {
		return nil
	}
	return f.Batches
}

func frameConsidered(f *Frame) int {
	if f == nil {
		return 0
	}
	return f.Considered
}
