package logevent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"
)

// Flatten writes attrs into dst. Nested groups become dot separated keys,
// prefix is prepended to every key and is expected to end with a dot when
// non-empty. Empty attributes are skipped and groups with an empty key are
// inlined, matching slog.Handler rules.
func Flatten(dst map[string]any, prefix string, attrs ...slog.Attr) {
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		if a.Value.Kind() == slog.KindGroup {
			group := a.Value.Group()
			if len(group) == 0 {
				continue
			}
			next := prefix
			if a.Key != "" {
				next = prefix + a.Key + "."
			}
			Flatten(dst, next, group...)
			continue
		}

		dst[prefix+a.Key] = value(a.Value)
	}
}

func value(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return float(v.Float64())
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	}

	switch x := v.Any().(type) {
	case nil:
		return nil
	case error:
		return x.Error()
	case float32:
		return float(float64(x))
	case float64:
		return float(x)
	default:
		// Every sink encodes events as JSON, so a value it cannot encode
		// would fail the whole batch on every attempt.
		if _, err := json.Marshal(x); err != nil {
			return fmt.Sprint(x)
		}
		return x
	}
}

// float keeps finite numbers and spells out NaN and infinities, which JSON
// has no representation for.
func float(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}
