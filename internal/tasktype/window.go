package tasktype

// WindowWidthDefault and WindowHeightDefault are the nominal logical
// window dimensions every ROI is checked against in debug builds.
const (
	WindowWidthDefault  = 1280
	WindowHeightDefault = 720
)
