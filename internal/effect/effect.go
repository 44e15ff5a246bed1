// Package effect carries client-bound output for one session: declarative
// visual effects (a selector plus a symbolic action key the page bound at
// render time) and rendered element patches. Delivery is one-way and
// fire-and-forget; a session with no connected client just drops frames.
package effect

// Effect references a client action registered at render time. The wire
// carries only the target selector and the action key, never code; the page
// decides what each key means for each element.
type Effect struct {
	Selector string `json:"selector"`
	Action   string `json:"action"`
}

// Action keys understood by the page runtime.
const (
	ActionShowForm = "showForm"
	ActionHideForm = "hideForm"
)

// Patch is a rendered HTML fragment to graft onto the page.
type Patch struct {
	Selector string
	Mode     PatchMode
	HTML     string
}

type PatchMode string

const (
	PatchOuter PatchMode = "outer"
	PatchInner PatchMode = "inner"
)

// Frame is one unit of client-bound output. Exactly one field is set.
type Frame struct {
	Effect *Effect
	Patch  *Patch
}
