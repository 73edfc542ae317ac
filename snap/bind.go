package snap

import (
	"fmt"
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Bind copies finalized values into the struct pointed to by target.
//
// Fields tagged `flag:"name"` receive the option's value and fields tagged
// `arg:"NAME"` the positional argument's. Options are looked up through the
// context chain, so a leaf context can bind options of its ancestors. Nested
// structs are walked; a `prefix:"db-"` tag on the struct field is prepended
// to the option names inside it. Fields whose parameter produced no value
// keep what they held.
func (c *Context) Bind(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to struct, got %T", target)
	}
	return c.bindStruct(rv.Elem(), "")
}

func (c *Context) bindStruct(sv reflect.Value, prefix string) error {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		fv := sv.Field(i)
		if !field.IsExported() || !fv.CanSet() {
			continue
		}

		if name, ok := field.Tag.Lookup("flag"); ok {
			if err := c.bindFlag(fv, prefix+name); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
			continue
		}
		if name, ok := field.Tag.Lookup("arg"); ok {
			if err := c.bindArg(fv, name); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
			continue
		}

		if fv.Kind() == reflect.Struct && field.Type != timeType {
			if err := c.bindStruct(fv, prefix+field.Tag.Get("prefix")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Context) bindFlag(fv reflect.Value, name string) error {
	v, flag := c.lookup(name)
	if flag == nil {
		return fmt.Errorf("no such option %q", name)
	}
	if v == nil || v.source == SourceNone {
		return nil
	}
	return setFieldValue(fv, v.value)
}

func (c *Context) bindArg(fv reflect.Value, name string) error {
	for _, arg := range c.command.args {
		if arg.Name != name {
			continue
		}
		if !c.argSet[arg] {
			return nil
		}
		return setFieldValue(fv, c.argValues[arg])
	}
	return fmt.Errorf("no such argument %q", name)
}

func setFieldValue(fv reflect.Value, value any) error {
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type() == fv.Type():
		fv.Set(rv)
	case fv.Kind() == reflect.Ptr && rv.Type().AssignableTo(fv.Type().Elem()):
		ptr := reflect.New(fv.Type().Elem())
		ptr.Elem().Set(rv)
		fv.Set(ptr)
	case rv.Kind() == reflect.Slice && fv.Kind() == reflect.Slice:
		out := reflect.MakeSlice(fv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := setFieldValue(out.Index(i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		fv.Set(out)
	case rv.Kind() == fv.Kind(), isNumeric(rv.Kind()) && isNumeric(fv.Kind()):
		fv.Set(rv.Convert(fv.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", rv.Type(), fv.Type())
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}
