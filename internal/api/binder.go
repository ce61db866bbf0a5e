// This file implements the parameter binder: the subsystem that lets a
// handler declare, by name, only the subset of ambient request data it needs,
// regardless of how dispatch assembled that data.
package api

import (
	"fmt"
	"net/http"
	"net/url"
)

// bindParams maps the available named values onto a binding's declared
// parameter order, producing the positional argument list for invocation.
//
// Behavior:
//   - Binding is order-independent on input and order-preserving on output:
//     declaration order alone decides argument positions.
//   - Supplied string values are URL-decoded one more time (every element of
//     multi-valued entries too), since upstream stages decode lazily.
//   - A declared parameter with no supplied value binds to its default when
//     it has one; otherwise binding fails immediately with
//     missing_callback_param naming the parameter, without attempting the
//     remaining parameters.
func bindParams(declared []Param, available map[string]any) ([]any, *Error) {
	args := make([]any, 0, len(declared))
	for _, p := range declared {
		if v, ok := available[p.Name]; ok {
			args = append(args, decodeValue(v))
			continue
		}
		if p.HasDefault {
			args = append(args, p.Default)
			continue
		}
		return nil, NewError(
			ErrCodeMissingCallbackParam,
			fmt.Sprintf("missing parameter %s", p.Name),
			http.StatusBadRequest,
		)
	}
	return args, nil
}

// decodeValue applies one extra URL-decoding pass to string-shaped values.
// Non-string values (reserved arguments, decoded body data, defaults merged
// by hooks) pass through untouched.
func decodeValue(v any) any {
	switch s := v.(type) {
	case string:
		return decodeString(s)
	case []string:
		out := make([]string, len(s))
		for i, e := range s {
			out[i] = decodeString(e)
		}
		return out
	default:
		return v
	}
}

func decodeString(s string) string {
	if dec, err := url.QueryUnescape(s); err == nil {
		return dec
	}
	return s
}
