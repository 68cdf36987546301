package canvas

import (
	"context"
	"fmt"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/model"
)

// Generator produces an object whose content comes from an external
// collaborator (QR or barcode image, UUID text, loaded image).
type Generator func(ctx context.Context) (*model.Object, error)

// InsertGenerated runs gen without holding the manager, then appends the
// result on top of the scene as it is at insertion time. Edits made while
// gen was running are preserved, and concurrent generations each land as a
// separate object. Generator failures are returned unchanged and nothing is
// inserted; an ID clash with an existing object is resolved by assigning a
// fresh ID.
func (m *Manager) InsertGenerated(ctx context.Context, gen Generator) (*model.Object, error) {
	o, err := gen(ctx)
	if err != nil {
		labelkit.Logger().Warn("canvas: generator failed", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("canvas: insert generated object: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.unlock()
	if m.scene.HasID(o.ID) {
		o = o.Duplicate()
	}
	m.insert(o)
	return o.Clone(), nil
}
