package ml

import "sync/atomic"

// Holder publishes the active artifact to concurrent readers. Retraining
// swaps the pointer after the new artifact is fully built, so a request
// always sees either the old model or the new one, never a partial state.
type Holder struct {
	current atomic.Pointer[Artifact]
}

// Current returns the active artifact, or nil when no model is loaded.
func (h *Holder) Current() *Artifact {
	return h.current.Load()
}

// Swap installs a new artifact.
func (h *Holder) Swap(a *Artifact) {
	h.current.Store(a)
}
