package validation

import "reflect"

// GinValidator plugs this package into gin's binding so bound payloads fail
// with the same *apperrors.ValidationError as direct calls to Struct.
type GinValidator struct{}

func (GinValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return Struct(obj)
}

func (GinValidator) Engine() any {
	return instance()
}
