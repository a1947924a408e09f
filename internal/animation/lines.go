package animation

import "math"

// FrameInterval is the default animation frame period in milliseconds.
const FrameInterval = 16

// FramesPerValue returns how many animation frames span one sample
// interval, rounded to the nearest frame and never below one.
func FramesPerValue(sampleIntervalMs, frameIntervalMs int) int {
	if frameIntervalMs <= 0 {
		frameIntervalMs = FrameInterval
	}
	n := int(math.Round(float64(sampleIntervalMs) / float64(frameIntervalMs)))
	if n < 1 {
		return 1
	}

	return n
}

// GenerateLines writes one (x0, y0, x1, y1) quad per adjacent pair of
// samples into dst. dst must hold 4*(len(samples)-1) values.
func GenerateLines(dst, samples []float64, scaleX, scaleY, xOffset float64) {
	for v := 0; v < len(samples)-1; v++ {
		q := dst[v*4 : v*4+4 : v*4+4]
		q[0] = float64(v)*scaleX - xOffset
		q[1] = samples[v] * scaleY
		q[2] = float64(v+1)*scaleX - xOffset
		q[3] = samples[v+1] * scaleY
	}
}
