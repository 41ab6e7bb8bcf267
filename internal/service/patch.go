package service

import (
	"fmt"
	"strings"

	"github.com/iliyamo/tutoplus/internal/calendar"
	"github.com/iliyamo/tutoplus/internal/repository"
)

// fieldRule validates and normalizes one patched value.
type fieldRule func(v any) (any, error)

func invalid(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, msg)
}

func textRule(field string) fieldRule {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, invalid(field, "cannot be blank")
		}
		return strings.TrimSpace(s), nil
	}
}

// optionalTextRule accepts null; an empty string is stored as null.
func optionalTextRule(field string) fieldRule {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, invalid(field, "must be a string")
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil, nil
		}
		return s, nil
	}
}

// trimRule accepts any string, blank included.
func trimRule(field string) fieldRule {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, invalid(field, "must be a string")
		}
		return strings.TrimSpace(s), nil
	}
}

// withRule returns a copy of rules with field governed by r.
func withRule(rules map[string]fieldRule, field string, r fieldRule) map[string]fieldRule {
	out := make(map[string]fieldRule, len(rules))
	for k, v := range rules {
		out[k] = v
	}
	out[field] = r
	return out
}

func enumRule[T ~string](field string, valid func(T) bool) fieldRule {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok || !valid(T(s)) {
			return nil, invalid(field, fmt.Sprintf("has unknown value %v", v))
		}
		return s, nil
	}
}

func boolRule(field string) fieldRule {
	return func(v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, invalid(field, "must be a boolean")
		}
		return b, nil
	}
}

func dateRule(field string) fieldRule {
	return func(v any) (any, error) {
		s, _ := v.(string)
		d, err := calendar.NormalizeDate(s)
		if err != nil {
			return nil, invalid(field, err.Error())
		}
		return d, nil
	}
}

func clockRule(field string) fieldRule {
	return func(v any) (any, error) {
		s, _ := v.(string)
		c, err := calendar.NormalizeClock(s)
		if err != nil {
			return nil, invalid(field, err.Error())
		}
		return c, nil
	}
}

// applyRules checks every key of raw against rules and returns the
// normalized patch. Keys without a rule are rejected.
func applyRules(rules map[string]fieldRule, raw map[string]any) (repository.Patch, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty patch", ErrValidation)
	}
	out := make(repository.Patch, len(raw))
	for k, v := range raw {
		rule, ok := rules[k]
		if !ok {
			return nil, fmt.Errorf("%w: column %q cannot be changed", ErrValidation, k)
		}
		nv, err := rule(v)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

// scoped returns filters with an extra equality appended.
func scoped(filters []repository.Filter, extra ...repository.Filter) []repository.Filter {
	out := make([]repository.Filter, 0, len(filters)+len(extra))
	out = append(out, filters...)
	return append(out, extra...)
}
