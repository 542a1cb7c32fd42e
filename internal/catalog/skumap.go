package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SKUMap maps size codes to SKUs for one product, keeping the order in which
// the sizes appear in the markup. An empty SKU marks an out-of-stock size.
// Size keys are stored normalized (see NormalizeSize).
type SKUMap struct {
	sizes []string
	skus  map[string]string
}

// NewSKUMap builds a map from alternating size, sku arguments.
func NewSKUMap(pairs ...string) SKUMap {
	var m SKUMap
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set assigns sku to size; a repeated size keeps its first position.
func (m *SKUMap) Set(size, sku string) {
	key := NormalizeSize(size)
	if m.skus == nil {
		m.skus = make(map[string]string)
	}
	if _, ok := m.skus[key]; !ok {
		m.sizes = append(m.sizes, key)
	}
	m.skus[key] = sku
}

// Lookup returns the trimmed SKU for size, or "" when absent or out of stock.
func (m SKUMap) Lookup(size string) string {
	return strings.TrimSpace(m.skus[NormalizeSize(size)])
}

// Len is the number of sizes, in stock or not.
func (m SKUMap) Len() int {
	return len(m.sizes)
}

// Sizes returns every size key in source order.
func (m SKUMap) Sizes() []string {
	return append([]string(nil), m.sizes...)
}

// AvailableSizes returns the sizes whose SKU is non-empty, in source order.
func (m SKUMap) AvailableSizes() []string {
	var out []string
	for _, size := range m.sizes {
		if strings.TrimSpace(m.skus[size]) != "" {
			out = append(out, size)
		}
	}
	return out
}

// HasAnySKU is false for a sold-out product.
func (m SKUMap) HasAnySKU() bool {
	for _, size := range m.sizes {
		if strings.TrimSpace(m.skus[size]) != "" {
			return true
		}
	}
	return false
}

// MarshalJSON writes the map as a JSON object in source order.
func (m SKUMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, size := range m.sizes {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(size)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.skus[size])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (m *SKUMap) UnmarshalJSON(data []byte) error {
	parsed, err := decodeOrdered(data)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseSKUMap reads the JSON-encoded data-sku-map attribute of a listing
// entry. Markup that was encoded twice (\" quotes) is retried once
// unescaped; anything still unreadable is logged and yields an empty map.
func ParseSKUMap(raw string, logger *zap.Logger) SKUMap {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return SKUMap{}
	}

	m, err := decodeOrdered([]byte(s))
	if err == nil {
		return m
	}
	m, err = decodeOrdered([]byte(strings.ReplaceAll(s, `\"`, `"`)))
	if err == nil {
		return m
	}

	prefix := s
	if len(prefix) > 120 {
		prefix = prefix[:120]
	}
	logger.Warn("Failed to parse SKU map", zap.String("raw", prefix), zap.Error(err))
	return SKUMap{}
}

func decodeOrdered(data []byte) (SKUMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return SKUMap{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return SKUMap{}, fmt.Errorf("sku map: expected JSON object, got %v", tok)
	}

	var m SKUMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return SKUMap{}, err
		}
		size, ok := tok.(string)
		if !ok {
			return SKUMap{}, fmt.Errorf("sku map: unexpected key %v", tok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return SKUMap{}, err
		}
		m.Set(size, skuString(val))
	}
	if _, err := dec.Token(); err != nil {
		return SKUMap{}, err
	}
	if dec.More() {
		return SKUMap{}, fmt.Errorf("sku map: trailing data")
	}
	return m, nil
}

// skuString mirrors how a loosely typed attribute value reads as a SKU:
// null and false are empty, numbers keep their literal form.
func skuString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return strconv.FormatBool(t)
		}
		return ""
	default:
		return ""
	}
}
