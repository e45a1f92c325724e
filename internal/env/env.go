// Package env populates configuration structs from environment variables.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Validator is implemented by config structs that check themselves after loading.
type Validator interface {
	Validate() error
}

// ErrInvalidValue is returned when an environment variable value cannot be parsed.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("%s=%q (field %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is given anything but a pointer to a struct.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return "env: expected pointer to struct, got " + e.Type
}

// ErrUnsupportedType is returned for tagged fields of a type Load cannot parse.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return "env: unsupported field type " + e.Kind
}

// FileSuffix is appended to a variable name to read its value from a file.
const FileSuffix = "_FILE"

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// parsers convert a raw string for one reflect.Kind.
var parsers = map[reflect.Kind]func(reflect.Value, string) error{
	reflect.String: func(f reflect.Value, s string) error {
		f.SetString(s)
		return nil
	},
	reflect.Bool: func(f reflect.Value, s string) error {
		b, err := strconv.ParseBool(s)
		if err == nil {
			f.SetBool(b)
		}
		return err
	},
	reflect.Int:   parseInt,
	reflect.Int8:  parseInt,
	reflect.Int16: parseInt,
	reflect.Int32: parseInt,
	reflect.Int64: parseInt,
	reflect.Float32: func(f reflect.Value, s string) error {
		return parseFloat(f, s, 32)
	},
	reflect.Float64: func(f reflect.Value, s string) error {
		return parseFloat(f, s, 64)
	},
	reflect.Slice: parseStrings,
}

func parseInt(f reflect.Value, s string) error {
	if f.Type() == durationType {
		d, err := time.ParseDuration(s)
		if err == nil {
			f.SetInt(int64(d))
		}
		return err
	}
	n, err := strconv.ParseInt(s, 10, f.Type().Bits())
	if err == nil {
		f.SetInt(n)
	}
	return err
}

func parseFloat(f reflect.Value, s string, bits int) error {
	x, err := strconv.ParseFloat(s, bits)
	if err == nil {
		f.SetFloat(x)
	}
	return err
}

// parseStrings splits a comma-separated list, trimming items and dropping empty ones.
func parseStrings(f reflect.Value, s string) error {
	if f.Type().Elem().Kind() != reflect.String {
		return ErrUnsupportedType{Kind: f.Type().String()}
	}
	items := make([]string, 0)
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	f.Set(reflect.ValueOf(items))
	return nil
}

// Load fills the struct v points to from the environment.
//
// Fields are mapped with env:"NAME" tags. The "file" option, as in
// env:"NAME,file", also accepts NAME_FILE holding a path whose trimmed
// contents become the value; NAME wins when both are set. Supported types are
// string, bool, signed integers, floats, time.Duration and []string
// (comma-separated). Unset variables leave the zero value; defaults belong to
// the consuming package.
//
// Nested structs are loaded recursively and validated, innermost first, when
// they implement Validator. Parse failures are collected so one call reports
// every bad variable.
func Load(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}
	return loadStruct(rv.Elem())
}

func loadStruct(sv reflect.Value) error {
	var errs []error
	st := sv.Type()

	for i := range sv.NumField() {
		field, sf := sv.Field(i), st.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := loadStruct(field); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		name, opts, _ := strings.Cut(sf.Tag.Get("env"), ",")
		if name == "" {
			continue
		}

		raw, ok, err := lookup(name, opts == "file")
		if err != nil {
			errs = append(errs, ErrInvalidValue{Field: sf.Name, EnvVar: name + FileSuffix, Err: err})
			continue
		}
		if !ok {
			continue
		}

		parse, found := parsers[field.Kind()]
		if !found {
			errs = append(errs, ErrInvalidValue{Field: sf.Name, EnvVar: name, Value: raw, Err: ErrUnsupportedType{Kind: field.Type().String()}})
			continue
		}
		if err := parse(field, raw); err != nil {
			errs = append(errs, ErrInvalidValue{Field: sf.Name, EnvVar: name, Value: raw, Err: err})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if validator, ok := sv.Addr().Interface().(Validator); ok {
		return validator.Validate()
	}
	return nil
}

// lookup returns the value of name, falling back to the file named by
// name_FILE when fromFile is set.
func lookup(name string, fromFile bool) (string, bool, error) {
	if val, ok := os.LookupEnv(name); ok {
		return val, true, nil
	}
	if !fromFile {
		return "", false, nil
	}
	path, ok := os.LookupEnv(name + FileSuffix)
	if !ok || path == "" {
		return "", false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(b)), true, nil
}
