// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// requiredAnnotation marks a flag that must be set on the command line.
const requiredAnnotation = "deckgraph_required"

// FlagsFromParams creates a [pflag.FlagSet] with flags bound to the tagged
// fields of params. params must be a pointer to a struct. Panics on
// invalid input (programming error, not runtime data).
//
//	var params duplicateParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("duplicate", &params)
//	    },
//	    Run: func(args []string) error {
//	        // params fields are populated after flag parsing
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers pflag entries for each tagged field in params.
// params must be a pointer to a struct.
//
// # Struct tags
//
//   - flag:"name" or flag:"name,n": the long flag name and optional
//     single-character shorthand. Fields without a flag tag are skipped.
//   - desc:"help text": the flag's help description.
//   - default:"value": the default value, parsed according to the
//     field's Go type. If omitted, the type's zero value is used.
//   - required:"true": Execute fails when the flag is not given.
//
// Supported field types are string, bool, int, uint32 and []string.
// Embedded struct fields are bound recursively, so commands can share
// groups of flags.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStructFields(value.Elem(), flagSet)
}

func bindStructFields(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStructFields(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		flagTag := field.Tag.Get("flag")
		if flagTag == "" {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}

		name, shorthand, _ := strings.Cut(flagTag, ",")
		if err := bindField(fieldValue, flagSet, name, shorthand, field.Tag.Get("desc"), field.Tag.Get("default")); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if field.Tag.Get("required") == "true" {
			if err := flagSet.SetAnnotation(name, requiredAnnotation, []string{"true"}); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
		}
	}

	return nil
}

// bindField creates a pflag binding for a single struct field.
func bindField(fieldValue reflect.Value, flagSet *pflag.FlagSet, name, shorthand, description, defaultString string) error {
	switch target := fieldValue.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(target, name, shorthand, defaultString, description)

	case *bool:
		defaultValue, err := parseDefault(defaultString, strconv.ParseBool)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.BoolVarP(target, name, shorthand, defaultValue, description)

	case *int:
		defaultValue, err := parseDefault(defaultString, strconv.Atoi)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.IntVarP(target, name, shorthand, defaultValue, description)

	case *uint32:
		defaultValue, err := parseDefault(defaultString, func(s string) (uint64, error) {
			return strconv.ParseUint(s, 10, 32)
		})
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.Uint32VarP(target, name, shorthand, uint32(defaultValue), description)

	case *[]string:
		var defaultValue []string
		if defaultString != "" {
			defaultValue = strings.Split(defaultString, ",")
		}
		flagSet.StringSliceVarP(target, name, shorthand, defaultValue, description)

	default:
		return fmt.Errorf("unsupported type %s for flag --%s", fieldValue.Type(), name)
	}

	return nil
}

func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}
