// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagsFromParams creates a [pflag.FlagSet] bound to the tagged fields
// of params, which must be a pointer to a struct. It panics on invalid
// params, a programming error rather than user input.
//
//	var params extractParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("extract", &params)
//	    },
//	    Run: func(ctx context.Context, args []string) error {
//	        // params is populated here
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for each tagged field of params.
//
// The flag tag holds the long name and an optional shorthand
// (flag:"overwrite,y"); untagged fields are skipped. desc is the help
// text and default the default value, parsed per the field's type.
// Supported types are string, bool, int and []string (comma-separated
// default). Embedded structs are bound recursively, which is how every
// command shares the global flags.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	pointer := reflect.ValueOf(params)
	if pointer.Kind() != reflect.Pointer || pointer.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(pointer.Elem(), flagSet)
}

// flagSpec is the parsed form of a field's tags.
type flagSpec struct {
	name, shorthand string
	usage           string
	defaultText     string
}

func bindStruct(value reflect.Value, flagSet *pflag.FlagSet) error {
	for i := range value.NumField() {
		field := value.Type().Field(i)
		fieldValue := value.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}
		tag, ok := field.Tag.Lookup("flag")
		if !ok || tag == "" {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}

		spec := flagSpec{usage: field.Tag.Get("desc"), defaultText: field.Tag.Get("default")}
		spec.name, spec.shorthand, _ = strings.Cut(tag, ",")
		if err := spec.bind(fieldValue.Addr().Interface(), flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func (s flagSpec) bind(target any, flagSet *pflag.FlagSet) error {
	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, s.name, s.shorthand, s.defaultText, s.usage)
	case *bool:
		initial, err := parseDefault(s, strconv.ParseBool)
		if err != nil {
			return err
		}
		flagSet.BoolVarP(target, s.name, s.shorthand, initial, s.usage)
	case *int:
		initial, err := parseDefault(s, strconv.Atoi)
		if err != nil {
			return err
		}
		flagSet.IntVarP(target, s.name, s.shorthand, initial, s.usage)
	case *[]string:
		var initial []string
		if s.defaultText != "" {
			initial = strings.Split(s.defaultText, ",")
		}
		flagSet.StringSliceVarP(target, s.name, s.shorthand, initial, s.usage)
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, s.name)
	}
	return nil
}

// parseDefault parses the default tag, treating an absent tag as the
// zero value.
func parseDefault[T any](s flagSpec, parse func(string) (T, error)) (T, error) {
	if s.defaultText == "" {
		var zero T
		return zero, nil
	}
	value, err := parse(s.defaultText)
	if err != nil {
		return value, fmt.Errorf("default for --%s: %w", s.name, err)
	}
	return value, nil
}
