package export

import (
	"context"
	"io"

	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/model"
)

func init() {
	Register(FormatJSON, func() Encoder { return jsonEncoder{} })
}

// jsonEncoder writes the scene wire format.
type jsonEncoder struct{}

func (jsonEncoder) ContentType() string { return "application/json" }

func (jsonEncoder) Encode(_ context.Context, w io.Writer, s *model.Scene, _ Options) error {
	data, err := codec.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
