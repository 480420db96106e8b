// Package frames turns laid-out scenes into the ordered, lazily generated
// stream of frames that make up a video.
package frames

import (
	"iter"
	"math"

	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/transition"
)

// Counts holds the frame budget derived from durations and frame rate.
type Counts struct {
	BlockFrames      int
	TransitionFrames int
	// FrameDuration is the length of one frame in seconds.
	FrameDuration float64
}

// ComputeCounts converts durations into whole frame counts. Both counts are at
// least one.
func ComputeCounts(transitionMs, fps, blockSeconds float64) Counts {
	return Counts{
		BlockFrames:      max(1, int(math.Round(blockSeconds*fps))),
		TransitionFrames: max(1, int(math.Round(transitionMs/1000*fps))),
		FrameDuration:    1 / fps,
	}
}

// Timestamp returns the presentation time in seconds of the frame at index.
func (c Counts) Timestamp(index int) float64 {
	return float64(index) * c.FrameDuration
}

// Total returns how many frames Generate yields for sceneCount scenes.
func (c Counts) Total(sceneCount int) int {
	if sceneCount <= 0 {
		return 0
	}
	return sceneCount*c.BlockFrames + (sceneCount-1)*c.TransitionFrames
}

// Frame is either a SceneFrame or a TransitionFrame.
type Frame interface {
	frame()
}

// SceneFrame holds a scene steady on screen.
type SceneFrame struct {
	Background paint.Color
	Opacity    float64
	PositionX  int
	PositionY  int
	Scene      *scene.Scene
}

// TransitionFrame is one interpolated step between two scenes.
type TransitionFrame struct {
	Background paint.Color
	// Progress is the eased progress the tokens were synthesized at.
	Progress float64
	Tokens   []transition.DrawToken
}

func (SceneFrame) frame()      {}
func (TransitionFrame) frame() {}

// Generate yields every frame of the video in order: BlockFrames copies of each
// scene followed, except after the last scene, by TransitionFrames frames
// morphing into the next one. Diffs are computed when their transition is
// reached and only one frame is built at a time. The sequence can be ranged
// over any number of times.
func Generate(scenes []scene.Scene, counts Counts, drift float64) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for i := range scenes {
			current := &scenes[i]
			steady := SceneFrame{
				Background: current.Measured.Background,
				Opacity:    1,
				PositionX:  current.BlockX,
				PositionY:  current.BlockY,
				Scene:      current,
			}
			for range counts.BlockFrames {
				if !yield(steady) {
					return
				}
			}

			if i+1 == len(scenes) {
				return
			}
			next := &scenes[i+1]
			diff := transition.DiffScenes(*current, *next)
			for step := 1; step <= counts.TransitionFrames; step++ {
				progress := transition.Ease(float64(step) / float64(counts.TransitionFrames))
				frame := TransitionFrame{
					Background: paint.Blend(current.Measured.Background, next.Measured.Background, progress),
					Progress:   progress,
					Tokens:     transition.Synthesize(diff, progress, drift),
				}
				if !yield(frame) {
					return
				}
			}
		}
	}
}
