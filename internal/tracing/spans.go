package tracing

// Span names for the render pipeline.
const (
	SpanRender   = "render.pipeline"
	SpanMeasure  = "render.measure"
	SpanEncode   = "render.encode"
	SpanFinalize = "render.finalize"
)

// Span attribute keys.
const (
	AttrRunID            = "render.run_id"
	AttrBlockCount       = "render.blocks"
	AttrBlockIndex       = "render.block.index"
	AttrBlockOrigin      = "render.block.origin"
	AttrBlockLanguage    = "render.block.language"
	AttrFrameWidth       = "render.frame.width"
	AttrFrameHeight      = "render.frame.height"
	AttrFrameCount       = "render.frames"
	AttrBlockFrames      = "render.frames.block"
	AttrTransitionFrames = "render.frames.transition"
	AttrOutput           = "render.output"
	AttrErrorStage       = "error.stage"
)

// Event names recorded on the encode span.
const (
	EventScenesMeasured = "scenes.measured"
	EventFrameSized     = "frame.sized"
	EventSinkOpened     = "sink.opened"
	EventAborted        = "render.aborted"
)
