package web

import (
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"tally-web/internal/effect"
)

// handleEvents is the per-session downstream channel: rendered element
// patches and declarative effects ride the same SSE stream, in the order
// the session produced them. Delivery is fire-and-forget; when the client
// is gone the frames are dropped and the next full page load reconciles.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)

	// One reader per session: a newer connection takes over the stream.
	superseded := ws.claimStream()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	seq := 0
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-superseded:
			return
		case <-s.done:
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case fr, ok := <-ws.disp.Frames():
			if !ok {
				return
			}
			switch {
			case fr.Effect != nil:
				// The seq bump makes identical back-to-back effects distinct
				// signal patches, so the page runtime never coalesces them.
				seq++
				_ = sse.MarshalAndPatchSignals(map[string]any{
					"effect": map[string]any{
						"selector": fr.Effect.Selector,
						"action":   fr.Effect.Action,
						"seq":      seq,
					},
				})
			case fr.Patch != nil:
				_ = sse.PatchElements(fr.Patch.HTML,
					datastar.WithSelector(fr.Patch.Selector),
					datastar.WithMode(patchMode(fr.Patch.Mode)))
			}
		}
	}
}

func patchMode(m effect.PatchMode) datastar.ElementPatchMode {
	if m == effect.PatchInner {
		return datastar.ElementPatchModeInner
	}
	return datastar.ElementPatchModeOuter
}
