package models

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// Shape JSON codec
// ============================================================

// ShapeList сериализуется как массив тегированных объектов: у каждого
// варианта в JSON есть поле "type", по которому идёт декодирование.
type ShapeList []Shape

func (l *ShapeList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	shapes := make([]Shape, 0, len(raw))
	for i, msg := range raw {
		shape, err := decodeShape(msg)
		if err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
		shapes = append(shapes, shape)
	}

	*l = shapes
	return nil
}

func decodeShape(data []byte) (Shape, error) {
	var tag struct {
		Type ShapeType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	var (
		shape Shape
		err   error
	)

	switch tag.Type {
	case ShapeRect:
		s := &RectShape{}
		err = json.Unmarshal(data, &s.BoxGeometry)
		s.Transform.normalize()
		shape = s
	case ShapeCircle:
		s := &CircleShape{}
		err = json.Unmarshal(data, &s.BoxGeometry)
		s.Transform.normalize()
		shape = s
	case ShapeTriangle:
		s := &TriangleShape{}
		err = json.Unmarshal(data, &s.BoxGeometry)
		s.Transform.normalize()
		shape = s
	case ShapeArrow:
		s := &ArrowShape{}
		err = json.Unmarshal(data, s)
		s.Transform.normalize()
		shape = s
	case ShapePolyline:
		s := &PolylineShape{}
		err = json.Unmarshal(data, s)
		s.Transform.normalize()
		shape = s
	case ShapePolygon:
		s := &PolygonShape{}
		err = json.Unmarshal(data, s)
		s.Transform.normalize()
		shape = s
	case ShapeText:
		s := &TextShape{}
		err = json.Unmarshal(data, s)
		s.Transform.normalize()
		shape = s
	default:
		return nil, fmt.Errorf("unknown shape type %q", tag.Type)
	}

	if err != nil {
		return nil, err
	}
	return shape, nil
}

// taggedShape добавляет поле "type" при маршалинге варианта.
func taggedShape(t ShapeType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	tag, err := json.Marshal(struct {
		Type ShapeType `json:"type"`
	}{t})
	if err != nil {
		return nil, err
	}

	if string(body) == "{}" {
		return tag, nil
	}

	// {"type":"..."} + {...} → {"type":"...", ...}
	merged := append(tag[:len(tag)-1], ',')
	merged = append(merged, body[1:]...)
	return merged, nil
}

func (s *RectShape) MarshalJSON() ([]byte, error) {
	return taggedShape(ShapeRect, s.BoxGeometry)
}

func (s *CircleShape) MarshalJSON() ([]byte, error) {
	return taggedShape(ShapeCircle, s.BoxGeometry)
}

func (s *TriangleShape) MarshalJSON() ([]byte, error) {
	return taggedShape(ShapeTriangle, s.BoxGeometry)
}

func (s *ArrowShape) MarshalJSON() ([]byte, error) {
	type alias ArrowShape
	return taggedShape(ShapeArrow, (*alias)(s))
}

func (s *PolylineShape) MarshalJSON() ([]byte, error) {
	type alias PolylineShape
	return taggedShape(ShapePolyline, (*alias)(s))
}

func (s *PolygonShape) MarshalJSON() ([]byte, error) {
	type alias PolygonShape
	return taggedShape(ShapePolygon, (*alias)(s))
}

func (s *TextShape) MarshalJSON() ([]byte, error) {
	type alias TextShape
	return taggedShape(ShapeText, (*alias)(s))
}
