package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ColumnCount is one entry of the empty-cells-by-column mapping.
type ColumnCount struct {
	Column string
	Count  int
}

// ColumnCounts is a column -> count mapping that keeps the order in which
// the service listed the columns. It encodes as a JSON/YAML object.
type ColumnCounts []ColumnCount

// Get returns the count for a column and whether it was present.
func (c ColumnCounts) Get(column string) (int, bool) {
	for _, cc := range c {
		if cc.Column == column {
			return cc.Count, true
		}
	}
	return 0, false
}

func (c *ColumnCounts) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return fmt.Errorf("empty_cells_by_column: invalid json")
	}
	res := gjson.ParseBytes(b)
	if res.Type == gjson.Null {
		*c = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("empty_cells_by_column: expected object, got %s", res.Type)
	}
	out := ColumnCounts{}
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("empty_cells_by_column: count for %q is not a number", key.String())
			return false
		}
		n := value.Float()
		if n != math.Trunc(n) {
			err = fmt.Errorf("empty_cells_by_column: count for %q is not an integer", key.String())
			return false
		}
		out = append(out, ColumnCount{Column: key.String(), Count: int(n)})
		return true
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

func (c ColumnCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(cc.Column)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(cc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c ColumnCounts) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, cc := range c {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cc.Column},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(cc.Count)},
		)
	}
	return node, nil
}

func (c *ColumnCounts) UnmarshalYAML(value *yaml.Node) error {
	if value.ShortTag() == "!!null" {
		*c = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("empty_cells_by_column: expected mapping at line %d", value.Line)
	}
	out := ColumnCounts{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var n int
		if err := value.Content[i+1].Decode(&n); err != nil {
			return fmt.Errorf("empty_cells_by_column: count for %q: %w", value.Content[i].Value, err)
		}
		out = append(out, ColumnCount{Column: value.Content[i].Value, Count: n})
	}
	*c = out
	return nil
}
