package canvas

import (
	"context"
	"io"

	"github.com/gogpu/labelkit/export"
)

// Import decodes data and replaces or merges into the current scene per
// opts. On any failure the scene is left untouched.
func (m *Manager) Import(data []byte, opts export.ImportOptions) error {
	m.mu.Lock()
	defer m.unlock()
	s, err := export.Import(m.scene, data, opts)
	if err != nil {
		return err
	}
	if opts.Merge {
		m.scene = s
		m.sel.prune(s)
		m.act = nil
	} else {
		m.replace(s)
	}
	m.markDirty()
	return nil
}

// Export writes a snapshot of the scene in format to w.
func (m *Manager) Export(ctx context.Context, w io.Writer, format string, opts export.Options) error {
	return export.Export(ctx, w, m.Snapshot(), format, opts)
}
