package memory

// Layout tags the physical arrangement of a buffer's elements.
//
// The executor framework only interprets layouts structurally: a backend's
// layout configuration names the tag each port must carry, and the
// compliance check compares tags for equality.
type Layout int32

const (
	// LayoutAny accepts whatever arrangement the producer chose.
	LayoutAny Layout = iota

	// LayoutPlain is the dense channels-first arrangement (ncsp).
	LayoutPlain

	// LayoutChannelsLast is the dense channels-last arrangement (nspc).
	LayoutChannelsLast

	// LayoutBlocked8c and LayoutBlocked16c block the channel axis in
	// groups of 8 or 16 elements.
	LayoutBlocked8c
	LayoutBlocked16c
)

var layoutNames = [...]string{
	LayoutAny:          "any",
	LayoutPlain:        "plain",
	LayoutChannelsLast: "channels-last",
	LayoutBlocked8c:    "blocked8c",
	LayoutBlocked16c:   "blocked16c",
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	if l < 0 || int(l) >= len(layoutNames) {
		return "invalid"
	}
	return layoutNames[l]
}
