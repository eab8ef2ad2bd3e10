package dom

// FrameTag is the tag name of embedded frames
const FrameTag = "iframe"

// NewFrame creates a detached iframe pointing at src, owned by the
// container's document.
func NewFrame(container *Element, src string) *Element {
	frame := container.doc.CreateElement(FrameTag)
	frame.attributes["src"] = src
	return frame
}

// Frames returns the iframes currently inside container
func Frames(container *Element) []*Element {
	return container.QueryAll(FrameTag)
}
