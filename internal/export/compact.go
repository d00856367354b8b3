package export

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"

	"screen-parser/internal/element"
)

// keyAliases is the fixed bidirectional mapping between full field names
// and their short wire aliases. Decoding must exactly invert encoding, so
// this table is the single source of truth for both directions.
var keyAliases = map[string]string{
	"img_shape":  "s",
	"compos":     "c",
	"id":         "i",
	"class":      "cl",
	"column_min": "cm",
	"row_min":    "rm",
	"column_max": "cM",
	"row_max":    "rM",
	"width":      "w",
	"height":     "h",
	"children":   "ch",
	"content":    "cnt",
	"parent":     "p",
}

var aliasKeys = func() map[string]string {
	m := make(map[string]string, len(keyAliases))
	for k, v := range keyAliases {
		m[v] = k
	}
	return m
}()

// EncodeCompact serializes a merge result with short field aliases and no
// insignificant whitespace.
func EncodeCompact(result *element.MergeResult) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal merge result: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("reparse merge result: %w", err)
	}
	encoded, err := json.Marshal(mapKeys(doc, keyAliases))
	if err != nil {
		return nil, fmt.Errorf("marshal compact form: %w", err)
	}
	return encoded, nil
}

// DecodeCompact restores a merge result from its compact form, mapping the
// short aliases back to the original field names.
func DecodeCompact(data []byte) (*element.MergeResult, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse compact form: %w", err)
	}
	restored, err := json.Marshal(mapKeys(doc, aliasKeys))
	if err != nil {
		return nil, fmt.Errorf("marshal restored form: %w", err)
	}
	var result element.MergeResult
	if err := json.Unmarshal(restored, &result); err != nil {
		return nil, fmt.Errorf("parse restored form: %w", err)
	}
	return &result, nil
}

// Compress passes a compact document through zlib at best compression.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("init compressor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flush compressor: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inverts Compress.
func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("init decompressor: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// mapKeys recursively renames object keys via the given table. Keys
// without a mapping pass through unchanged.
func mapKeys(doc any, table map[string]string) any {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key := k
			if alias, ok := table[k]; ok {
				key = alias
			}
			out[key] = mapKeys(val, table)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = mapKeys(item, table)
		}
		return out
	default:
		return doc
	}
}
