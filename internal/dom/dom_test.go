package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRemoveFrame(t *testing.T) {
	container := NewContainer()
	frame := NewFrame(container, "https://vf.example.com/apex/LC_APIPage")

	assert.False(t, frame.Attached())
	container.AppendChild(frame)

	require.Len(t, Frames(container), 1)
	assert.True(t, frame.Attached())
	assert.Equal(t, "https://vf.example.com/apex/LC_APIPage", frame.Src())

	frame.Remove()
	assert.Empty(t, Frames(container))
	assert.False(t, frame.Attached())

	// removing a detached element records nothing
	frame.Remove()

	changes := container.doc.Changes()
	require.Len(t, changes, 3) // container append, frame append, frame remove
	assert.Equal(t, ChangeAppend, changes[1].Type)
	assert.Equal(t, FrameTag, changes[1].TagName)
	assert.Equal(t, ChangeRemove, changes[2].Type)
}

func TestAppendChildReparents(t *testing.T) {
	doc := NewDocument()
	a := doc.CreateElement("div")
	b := doc.CreateElement("div")
	doc.Root().AppendChild(a)
	doc.Root().AppendChild(b)

	frame := NewFrame(a, "https://x")
	a.AppendChild(frame)
	b.AppendChild(frame)

	assert.Empty(t, Frames(a))
	assert.Len(t, Frames(b), 1)
	assert.Len(t, doc.Root().QueryAll("IFRAME"), 1)
}

func TestAttributes(t *testing.T) {
	container := NewContainer()
	container.SetAttribute("class", "lc-api")

	assert.Equal(t, "lc-api", container.GetAttribute("class"))
	assert.Equal(t, "", container.GetAttribute("missing"))
}
