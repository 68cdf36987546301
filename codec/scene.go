// Package codec converts scenes and objects to and from the versioned JSON
// wire format.
//
// A scene is written as a SceneRecord; each object as an ObjectRecord whose
// customProps hold the modelled fields and whose fabricProps carry renderer
// properties the engine does not interpret. Readers reject any record whose
// version has a major component other than FormatMajor.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gogpu/labelkit/model"
	"github.com/gogpu/labelkit/ruler"
)

// SceneRecord is the wire form of a scene.
type SceneRecord struct {
	Version         string         `json:"version"`
	CanvasID        string         `json:"canvasId"`
	ProjectID       string         `json:"projectId"`
	LabelID         string         `json:"labelId,omitempty"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	Units           ruler.Unit     `json:"units"`
	DPI             float64        `json:"dpi"`
	BackgroundColor string         `json:"backgroundColor"`
	BackgroundImage string         `json:"backgroundImage,omitempty"`
	GridSize        float64        `json:"gridSize"`
	SnapToGrid      bool           `json:"snapToGrid"`
	ShowGrid        bool           `json:"showGrid"`
	Objects         []ObjectRecord `json:"objects"`
	Metadata        map[string]any `json:"metadata"`
	Created         time.Time      `json:"created"`
	Modified        time.Time      `json:"modified"`
}

// SerializeScene converts s to its record. The record version is
// s.Version when set, FormatVersion otherwise. The record shares no memory
// with s.
func SerializeScene(s *model.Scene) SceneRecord {
	s = s.Clone()
	rec := SceneRecord{
		Version:         s.Version,
		CanvasID:        s.ID,
		ProjectID:       s.ProjectID,
		LabelID:         s.LabelID,
		Width:           s.Width,
		Height:          s.Height,
		Units:           s.Units,
		DPI:             s.DPI,
		BackgroundColor: s.BackgroundColor,
		BackgroundImage: s.BackgroundImage,
		GridSize:        s.GridSize,
		SnapToGrid:      s.SnapToGrid,
		ShowGrid:        s.ShowGrid,
		Objects:         make([]ObjectRecord, 0, len(s.Objects)),
		Metadata:        s.Metadata,
		Created:         s.Created,
		Modified:        s.Modified,
	}
	if rec.Version == "" {
		rec.Version = FormatVersion
	}
	for _, o := range s.Objects {
		rec.Objects = append(rec.Objects, serialize(o))
	}
	return rec
}

// DeserializeScene builds a new scene from rec. It never touches an
// existing scene; callers replace theirs with the result. Any failing
// object fails the whole scene. The scene shares no memory with rec.
func DeserializeScene(rec SceneRecord) (*model.Scene, error) {
	if err := CheckVersion(rec.Version); err != nil {
		return nil, err
	}
	s := &model.Scene{
		ID:              rec.CanvasID,
		ProjectID:       rec.ProjectID,
		LabelID:         rec.LabelID,
		Width:           rec.Width,
		Height:          rec.Height,
		Units:           rec.Units,
		DPI:             rec.DPI,
		BackgroundColor: rec.BackgroundColor,
		BackgroundImage: rec.BackgroundImage,
		GridSize:        rec.GridSize,
		SnapToGrid:      rec.SnapToGrid,
		ShowGrid:        rec.ShowGrid,
		Metadata:        rec.Metadata,
		Created:         rec.Created,
		Modified:        rec.Modified,
		Version:         rec.Version,
	}
	if len(rec.Objects) > 0 {
		s.Objects = make([]*model.Object, 0, len(rec.Objects))
	}
	for _, r := range rec.Objects {
		o, err := decodeObject(r)
		if err != nil {
			return nil, err
		}
		s.Objects = append(s.Objects, o)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Marshal encodes s as indented JSON.
func Marshal(s *model.Scene) ([]byte, error) {
	data, err := json.MarshalIndent(SerializeScene(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("codec: marshal scene: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a scene. Malformed JSON fails with a
// *DeserializationError wrapping ErrMalformed.
func Unmarshal(data []byte) (*model.Scene, error) {
	rec, err := UnmarshalRecord(data)
	if err != nil {
		return nil, err
	}
	return DeserializeScene(rec)
}

// UnmarshalRecord decodes a scene record without converting it.
func UnmarshalRecord(data []byte) (SceneRecord, error) {
	var rec SceneRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return SceneRecord{}, malformed("", "scene record", err)
	}
	return rec, nil
}
