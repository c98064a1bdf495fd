package ir

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MarshalJSON encodes the node as JSON with object fields in insertion
// order.
func (n *Node) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := writeJSON(buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *Node) error {
	switch n.Type {
	case NullType:
		buf.WriteString("null")
	case BoolType:
		buf.WriteString(strconv.FormatBool(n.Bool))
	case NumberType:
		if n.Int64 != nil {
			buf.WriteString(strconv.FormatInt(*n.Int64, 10))
		} else if n.Float64 != nil {
			buf.WriteString(strconv.FormatFloat(*n.Float64, 'g', -1, 64))
		} else {
			buf.WriteString("0")
		}
	case StringType:
		d, err := json.Marshal(n.String)
		if err != nil {
			return err
		}
		buf.Write(d)
	case ArrayType:
		buf.WriteByte('[')
		for i, v := range n.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i := range n.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			d, err := json.Marshal(n.Fields[i])
			if err != nil {
				return err
			}
			buf.Write(d)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Values[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
