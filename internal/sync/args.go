package sync

import (
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

// argString/argBool/argOptString read a mutation's untyped args map,
// rejecting anything malformed with a ValidationError rather than panicking
// on a type assertion.

func argString(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", errorx.New(errorx.ValidationError, "missing required field "+key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", errorx.New(errorx.ValidationError, "field "+key+" must be a string")
	}
	return s, nil
}

func argOptString(args map[string]any, key string) (*string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, errorx.New(errorx.ValidationError, "field "+key+" must be a string")
	}
	return &s, nil
}

func argOptBool(args map[string]any, key string) (*bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return nil, errorx.New(errorx.ValidationError, "field "+key+" must be a boolean")
	}
	return &b, nil
}
