// internal/websocket/router.go
package websocket

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Router exposes a target's exported methods as RPC endpoints. Method names
// map one to one; parameters arrive as decoded JSON values and are coerced
// to the method's signature.
type Router struct {
	target  interface{}
	methods map[string]reflect.Method
}

// NewRouter builds a router over the target's exported method set.
func NewRouter(target interface{}) *Router {
	r := &Router{
		target:  target,
		methods: make(map[string]reflect.Method),
	}
	targetType := reflect.TypeOf(target)
	for i := 0; i < targetType.NumMethod(); i++ {
		method := targetType.Method(i)
		if method.IsExported() {
			r.methods[method.Name] = method
		}
	}
	return r
}

// Call invokes the named method with the given parameters.
func (r *Router) Call(methodName string, params []interface{}) (interface{}, error) {
	method, ok := r.methods[methodName]
	if !ok {
		return nil, fmt.Errorf("method not found: %s", methodName)
	}

	methodType := method.Type
	numIn := methodType.NumIn() - 1
	if len(params) != numIn {
		return nil, fmt.Errorf("method %s expects %d params, got %d", methodName, numIn, len(params))
	}

	args := make([]reflect.Value, numIn+1)
	args[0] = reflect.ValueOf(r.target)
	for i, param := range params {
		value, err := coerceParam(param, methodType.In(i + 1))
		if err != nil {
			return nil, fmt.Errorf("param %d of %s: %w", i, methodName, err)
		}
		args[i+1] = value
	}

	return collectResults(method.Func.Call(args))
}

// coerceParam adapts a decoded JSON value to the target type. Direct
// assignment and numeric conversion are tried first; anything structured
// goes through a JSON round-trip so callers can pass objects for struct
// parameters.
func coerceParam(param interface{}, targetType reflect.Type) (reflect.Value, error) {
	if param == nil {
		return reflect.Zero(targetType), nil
	}

	value := reflect.ValueOf(param)
	if value.Type().AssignableTo(targetType) {
		return value, nil
	}
	if value.Kind() == reflect.Float64 && isIntegerKind(targetType.Kind()) {
		return value.Convert(targetType), nil
	}
	if value.Type().ConvertibleTo(targetType) && value.Kind() == targetType.Kind() {
		return value.Convert(targetType), nil
	}

	raw, err := json.Marshal(param)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot encode %T: %w", param, err)
	}
	out := reflect.New(targetType)
	if err := json.Unmarshal(raw, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s: %w", param, targetType, err)
	}
	return out.Elem(), nil
}

func isIntegerKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// collectResults maps the method's return values onto (result, error). A
// trailing error return becomes the call error; a single remaining value is
// the result; several become an array.
func collectResults(results []reflect.Value) (interface{}, error) {
	if len(results) == 0 {
		return nil, nil
	}

	last := results[len(results)-1]
	if last.Type().Implements(errType) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		results = results[:len(results)-1]
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0].Interface(), nil
	default:
		out := make([]interface{}, len(results))
		for i, result := range results {
			out[i] = result.Interface()
		}
		return out, nil
	}
}
