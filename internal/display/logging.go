package display

import (
	"io"
	"log/slog"

	"github.com/gogpu/gg"
)

// SetRendererLogging routes gg's diagnostics to w at debug level, or
// silences them.
func SetRendererLogging(w io.Writer, debug bool) {
	if !debug || w == nil {
		gg.SetLogger(nil)
		return
	}
	gg.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
