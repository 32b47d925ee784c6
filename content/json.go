package content

import (
	"encoding/json"
	"fmt"
)

type blockJSON struct {
	ID          string          `json:"id"`
	Type        BlockType       `json:"type"`
	HasChildren bool            `json:"has_children,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes the block with its payload under "value".
func (b Block) MarshalJSON() ([]byte, error) {
	out := blockJSON{ID: b.ID, Type: b.Type, HasChildren: b.HasChildren}
	if b.Value != nil {
		raw, err := json.Marshal(b.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %s block %s: %w", b.Type, b.ID, err)
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the payload according to the type discriminator.
// Types outside the known set decode to Unsupported.
func (b *Block) UnmarshalJSON(data []byte) error {
	var in blockJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b.ID, b.Type, b.HasChildren = in.ID, in.Type, in.HasChildren

	var err error
	switch in.Type {
	case TypeParagraph:
		b.Value, err = decodeValue[Paragraph](in.Value)
	case TypeHeading1, TypeHeading2, TypeHeading3:
		b.Value, err = decodeValue[Heading](in.Value)
	case TypeBulletedListItem, TypeNumberedListItem:
		b.Value, err = decodeValue[ListItem](in.Value)
	case TypeToDo:
		b.Value, err = decodeValue[ToDo](in.Value)
	case TypeToggle:
		b.Value, err = decodeValue[Toggle](in.Value)
	case TypeChildPage:
		b.Value, err = decodeValue[ChildPage](in.Value)
	case TypeImage:
		b.Value, err = decodeValue[Image](in.Value)
	case TypeCode:
		b.Value, err = decodeValue[Code](in.Value)
	case TypeDivider:
		b.Value = Divider{}
	case TypeQuote:
		b.Value, err = decodeValue[Quote](in.Value)
	default:
		b.Value = Unsupported{}
	}
	if err != nil {
		return fmt.Errorf("decode %s block %s: %w", in.Type, in.ID, err)
	}
	return nil
}

func decodeValue[T Value](raw json.RawMessage) (Value, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
