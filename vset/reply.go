package vset

import (
	"fmt"
	"strconv"

	"github.com/poiesic/vectorview/core"
)

// Reply decoding helpers. go-redis decodes RESP into any-typed values:
// integers as int64, bulk strings as string, arrays as []any and RESP3
// maps as map[any]any. The helpers below tolerate both the RESP2 and
// RESP3 shapes of each reply.

func formatComponent(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func toInt64(reply any) (int64, error) {
	switch v := reply.(type) {
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedReply, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrMalformedReply, reply)
	}
}

func toFloat64(reply any) (float64, error) {
	switch v := reply.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedReply, v)
		}
		return f, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: expected number, got %T", ErrMalformedReply, reply)
	}
}

func toString(reply any) (string, error) {
	s, ok := reply.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrMalformedReply, reply)
	}
	return s, nil
}

func toStringSlice(reply any) ([]string, error) {
	items, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedReply, reply)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, err := toString(item)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func toVector(reply any) ([]float32, error) {
	items, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedReply, reply)
	}
	vector := make([]float32, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, err
		}
		vector[i] = float32(f)
	}
	return vector, nil
}

// parseSimReply decodes a VSIM reply. Without scores it is a plain array
// of element names. With scores, RESP2 interleaves name and score in a
// flat array while RESP3 replies with a map.
func parseSimReply(reply any, withScores bool) ([]core.SimilarityMatch, error) {
	if reply == nil {
		return nil, nil
	}

	if m, ok := reply.(map[any]any); ok {
		matches := make([]core.SimilarityMatch, 0, len(m))
		for k, v := range m {
			element, err := toString(k)
			if err != nil {
				return nil, err
			}
			score, err := toFloat64(v)
			if err != nil {
				return nil, err
			}
			matches = append(matches, core.SimilarityMatch{Element: element, Score: score})
		}
		return matches, nil
	}

	items, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedReply, reply)
	}

	if !withScores {
		matches := make([]core.SimilarityMatch, len(items))
		for i, item := range items {
			element, err := toString(item)
			if err != nil {
				return nil, err
			}
			matches[i] = core.SimilarityMatch{Element: element}
		}
		return matches, nil
	}

	if len(items)%2 != 0 {
		return nil, fmt.Errorf("%w: odd WITHSCORES array length %d", ErrMalformedReply, len(items))
	}
	matches := make([]core.SimilarityMatch, 0, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		element, err := toString(items[i])
		if err != nil {
			return nil, err
		}
		score, err := toFloat64(items[i+1])
		if err != nil {
			return nil, err
		}
		matches = append(matches, core.SimilarityMatch{Element: element, Score: score})
	}
	return matches, nil
}

func parseLinksReply(reply any) (core.NeighborLayers, error) {
	items, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedReply, reply)
	}
	layers := make(core.NeighborLayers, len(items))
	for i, item := range items {
		neighbors, err := toStringSlice(item)
		if err != nil {
			return nil, err
		}
		layers[i] = neighbors
	}
	return layers, nil
}

// parseInfoReply decodes the VINFO map: quant-type, vector-dim, size,
// max-level, vset-uid and hnsw-max-node-uid.
func parseInfoReply(reply any) (*core.CollectionInfo, error) {
	fields := make(map[string]any)

	switch v := reply.(type) {
	case map[any]any:
		for k, val := range v {
			name, err := toString(k)
			if err != nil {
				return nil, err
			}
			fields[name] = val
		}
	case []any:
		if len(v)%2 != 0 {
			return nil, fmt.Errorf("%w: odd map array length %d", ErrMalformedReply, len(v))
		}
		for i := 0; i < len(v); i += 2 {
			name, err := toString(v[i])
			if err != nil {
				return nil, err
			}
			fields[name] = v[i+1]
		}
	default:
		return nil, fmt.Errorf("%w: expected map, got %T", ErrMalformedReply, reply)
	}

	info := &core.CollectionInfo{}
	if raw, ok := fields["quant-type"]; ok {
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		info.QuantType = core.Quantization(s)
	}
	if raw, ok := fields["vector-dim"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		info.Dim = int(n)
	}
	if raw, ok := fields["size"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		info.Size = n
	}
	if raw, ok := fields["max-level"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		info.MaxLevel = int(n)
	}
	if raw, ok := fields["vset-uid"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		info.UID = n
	}
	if raw, ok := fields["hnsw-max-node-uid"]; ok {
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		info.MaxNodeUID = n
	}
	return info, nil
}
