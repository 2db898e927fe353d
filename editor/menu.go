package editor

import (
	"image"
	"slices"

	"grid-editor/assets"
	"grid-editor/overlay"
)

// Menu is the side panel. Its rows depend only on whether something is
// selected: load entries when idle, transform commands otherwise.
type Menu struct {
	panel   *overlay.Panel
	catalog []assets.Entry

	items []Command
	hover int

	image   *image.RGBA
	version uint64
	dirty   bool
}

func NewMenu(panel *overlay.Panel, catalog []assets.Entry) *Menu {
	m := &Menu{panel: panel, catalog: catalog, hover: -1}
	m.Refresh(NewSelection())
	return m
}

// Refresh recomputes the rows for the selection state.
func (m *Menu) Refresh(sel *Selection) {
	var items []Command
	if sel.HasSelection() {
		items = SelectionCommands()
	} else {
		items = LoadCommands(m.catalog)
	}
	if slices.Equal(labels(items), labels(m.items)) {
		return
	}
	m.items = items
	m.hover = -1
	m.dirty = true
}

func (m *Menu) Items() []Command {
	return m.items
}

// HitTest returns the row under (x, y), or nil. inside reports whether the
// point is on the panel, where it must not reach the scene.
func (m *Menu) HitTest(x, y float64) (cmd Command, inside bool) {
	row, inside := m.panel.HitTest(x, y, len(m.items))
	if row < 0 {
		return nil, inside
	}
	return m.items[row], true
}

// SetHover highlights the row under the cursor.
func (m *Menu) SetHover(x, y float64) {
	row, _ := m.panel.HitTest(x, y, len(m.items))
	if row != m.hover {
		m.hover = row
		m.dirty = true
	}
}

// Image returns the rendered panel and a version that changes whenever the
// pixels do.
func (m *Menu) Image() (*image.RGBA, uint64) {
	if m.dirty || m.image == nil {
		m.image = m.panel.Render(labels(m.items), m.hover)
		m.version++
		m.dirty = false
	}
	return m.image, m.version
}

func labels(items []Command) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.Description()
	}
	return out
}
