package probe

import (
	"context"
	"strconv"
	"strings"

	"qmprobe/internal/logging"
	"qmprobe/internal/wire"
)

// Value is a deferred handle onto one requested variable or test. Creating
// one queues the request on its Project; the oracle runs only when the
// value is observed through one of the accessors, and that first
// observation resolves every request pending on the Project in a single
// run. A Value caches its own result after the first observation, so it
// stays stable even if the Project is later repointed elsewhere.
type Value struct {
	project *Project
	kind    wire.Kind
	name    string

	resolved bool
	defined  bool
	elems    []string
}

// Kind reports whether this handle is a variable or a test request.
func (v *Value) Kind() wire.Kind { return v.kind }

// Name returns the requested variable name or test expression.
func (v *Value) Name() string { return v.name }

// force resolves the Project's pending set if needed, then snapshots this
// handle's entry from the cache. In fail-fast mode a resolution failure
// propagates and the handle stays unresolved so a later access can retry;
// otherwise the failure is logged and the handle resolves to absent.
func (v *Value) force(ctx context.Context) error {
	if v.resolved {
		return nil
	}

	if err := v.project.Resolve(ctx); err != nil {
		if v.project.FailFast() {
			return err
		}
		logging.ProbeWarn("resolution failed, %s %q treated as absent: %v", v.kind, v.name, err)
	}

	switch v.kind {
	case wire.KindTest:
		if flag, ok := v.project.cache.Tests[v.name]; ok {
			v.defined = true
			v.elems = []string{flag}
		}
	default:
		if elems, ok := v.project.cache.Variables[v.name]; ok {
			v.defined = true
			v.elems = append([]string(nil), elems...)
		}
	}
	v.resolved = true
	return nil
}

// Defined reports whether the oracle produced any result for this request.
func (v *Value) Defined(ctx context.Context) (bool, error) {
	if err := v.force(ctx); err != nil {
		return false, err
	}
	return v.defined, nil
}

// AsList returns all elements of a variable in emission order, or the
// single flag of a test. An unresolved name yields an empty, non-nil list.
func (v *Value) AsList(ctx context.Context) ([]string, error) {
	if err := v.force(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(v.elems))
	copy(out, v.elems)
	return out, nil
}

// AsString returns the scalar form: the first element, or "" when absent.
func (v *Value) AsString(ctx context.Context) (string, error) {
	if err := v.force(ctx); err != nil {
		return "", err
	}
	if len(v.elems) == 0 {
		return "", nil
	}
	return v.elems[0], nil
}

// AsInt returns the scalar form parsed as an integer. A value that is
// absent or not numeric yields 0, mirroring absent-value behavior rather
// than erroring.
func (v *Value) AsInt(ctx context.Context) (int, error) {
	s, err := v.AsString(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// AsBool returns the boolean form. For a test this is whether the
// expression held; for a variable, whether it is defined with a first
// element that is neither empty nor "0".
func (v *Value) AsBool(ctx context.Context) (bool, error) {
	if err := v.force(ctx); err != nil {
		return false, err
	}
	if !v.defined || len(v.elems) == 0 {
		return false, nil
	}
	if v.kind == wire.KindTest {
		return v.elems[0] == "1", nil
	}
	return v.elems[0] != "" && v.elems[0] != "0", nil
}

// Compare orders two handles by their coerced forms: numerically when both
// sides parse as integers, otherwise lexically on the string form. Returns
// -1, 0 or 1.
func (v *Value) Compare(ctx context.Context, other *Value) (int, error) {
	a, err := v.AsString(ctx)
	if err != nil {
		return 0, err
	}
	b, err := other.AsString(ctx)
	if err != nil {
		return 0, err
	}
	an, aerr := strconv.Atoi(strings.TrimSpace(a))
	bn, berr := strconv.Atoi(strings.TrimSpace(b))
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1, nil
		case an > bn:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return strings.Compare(a, b), nil
}

// Equal reports whether two handles coerce to the same value.
func (v *Value) Equal(ctx context.Context, other *Value) (bool, error) {
	c, err := v.Compare(ctx, other)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}
