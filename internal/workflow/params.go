package workflow

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/maestro/hello-world-dag/internal/domain"
)

var (
	ErrMissingParam = errors.New("missing required param")
	ErrInvalidParam = errors.New("invalid param value")
	ErrUnknownParam = errors.New("unknown param")
)

// ResolveParams merges the invocation values with the declared defaults and
// coerces every value to its declared type.
func ResolveParams(wf *domain.Workflow, values map[string]any) (map[string]any, error) {
	for name := range values {
		if _, ok := wf.Params[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
	}

	names := make([]string, 0, len(wf.Params))
	for name := range wf.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	resolved := make(map[string]any, len(wf.Params))
	for _, name := range names {
		param := wf.Params[name]

		value, ok := values[name]
		if !ok || value == nil {
			if param.Required() {
				return nil, fmt.Errorf("%w: %s", ErrMissingParam, name)
			}
			value = param.Default
		}

		coerced, err := coerceParam(param.Type, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParam, name, err)
		}
		resolved[name] = coerced
	}

	return resolved, nil
}

func coerceParam(typ domain.ParamType, value any) (any, error) {
	switch typ {
	case domain.ParamTypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil

	case domain.ParamTypeInteger:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			// float64(math.MaxInt64) rounds up to 2^63.
			if v < math.MinInt64 || v >= math.MaxInt64 {
				return nil, fmt.Errorf("integer %v out of range", v)
			}
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", v)
			}
			return n, nil
		}

	case domain.ParamTypeNumber:
		switch v := value.(type) {
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", v)
			}
			return f, nil
		}

	case domain.ParamTypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", v)
			}
			return b, nil
		}

	default:
		return nil, fmt.Errorf("unsupported type %q", typ)
	}

	return nil, fmt.Errorf("expected %s, got %T", typ, value)
}
