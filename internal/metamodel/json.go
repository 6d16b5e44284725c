package metamodel

import (
	"bytes"
	"encoding/json"
)

// MarshalOrderedJSON renders o as a JSON object with keys in insertion
// order. encoding/json sorts map keys alphabetically, which would hide
// merge-order bugs in tests that assert byte-exact repeated-merge output;
// this keeps key order observable end to end.
func (o *OrderedObject) MarshalOrderedJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.data[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
