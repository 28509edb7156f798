package helpers

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// ErrFieldNotFound reports a field name that does not exist on the target
// type or any embedded ancestor.
var ErrFieldNotFound = errors.New("field not found")

// SetField forcibly assigns value to the named field of target, which must
// be a non-nil pointer to a struct. Unexported fields are written through
// unsafe so white-box tests can force internal state the public API would
// never allow. The caller is responsible for leaving the object consistent
// with its own contracts; no value validation is performed beyond Go type
// compatibility.
func SetField(target any, name string, value any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("target must be a non-nil struct pointer, got %T", target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct, got %s", rv.Kind())
	}

	// FieldByName walks embedded structs, covering ancestor fields
	field := rv.FieldByName(name)
	if !field.IsValid() {
		return fmt.Errorf("%w: %s has no field %q", ErrFieldNotFound, rv.Type(), name)
	}

	var val reflect.Value
	if value == nil {
		val = reflect.Zero(field.Type())
	} else {
		val = reflect.ValueOf(value)
		if !val.Type().AssignableTo(field.Type()) {
			if !val.Type().ConvertibleTo(field.Type()) {
				return fmt.Errorf("cannot assign %s to field %q of type %s", val.Type(), name, field.Type())
			}
			val = val.Convert(field.Type())
		}
	}

	if !field.CanSet() {
		// Re-address the unexported field so it becomes settable
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	field.Set(val)
	return nil
}

// Shared-state registry. Go has no class-level fields, so packages holding
// process-wide state opt in by registering the pointer under a stable name;
// tests then reach it by name without importing the internals.
var (
	sharedMu sync.RWMutex
	shared   = make(map[string]any)
)

// RegisterShared makes target (a struct pointer) reachable for SetSharedField
func RegisterShared(name string, target any) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared[name] = target
}

// UnregisterShared removes a previously registered target
func UnregisterShared(name string) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	delete(shared, name)
}

// SetSharedField assigns a field on registered shared state. An unknown
// registry name fails the same way as a missing field.
func SetSharedField(name, field string, value any) error {
	sharedMu.RLock()
	target, ok := shared[name]
	sharedMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: no shared state registered as %q", ErrFieldNotFound, name)
	}
	return SetField(target, field, value)
}
