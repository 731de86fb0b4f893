// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"unarc", "unrac", 2},
		{"extract", "extrct", 1},
		{"模板", "模版", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			if got := editDistance(test.a, test.b); got != test.want {
				t.Errorf("editDistance(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if got := editDistance(test.b, test.a); got != test.want {
				t.Errorf("editDistance(%q, %q) = %d, want %d", test.b, test.a, got, test.want)
			}
		})
	}
}

func TestClosestKeepsFirstOnTie(t *testing.T) {
	if got := closest("pat", []string{"pan", "par"}); got != "pan" {
		t.Errorf("closest = %q, want %q", got, "pan")
	}
	if got := closest("", []string{"arc"}); got != "arc" {
		t.Errorf("closest of empty name = %q, want %q", got, "arc")
	}
	if got := closest("anything", nil); got != "" {
		t.Errorf("closest with no candidates = %q, want empty", got)
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "build"},
		{Name: "extract"},
		{Name: "pack"},
		{Name: "unarc"},
		{Name: "verify"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"biuld", "build"},
		{"extrat", "extract"},
		{"packk", "pack"},
		{"unarcc", "unarc"},
		{"verfy", "verify"},
		{"zzzzzzzzz", ""},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			if got := suggestCommand(test.input, commands); got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.StringP("output", "o", "", "")
		flagSet.BoolP("overwrite", "y", false, "")
		flagSet.StringSlice("templates", nil, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"double dash typo", []string{"--ouptut"}, "--output"},
		{"single dash typo", []string{"-overwrit"}, "--overwrite"},
		{"with equals", []string{"--templats=a,b"}, "--templates"},
		{"defined flags skipped", []string{"-y", "--output", "x", "--templatse"}, "--templates"},
		{"nothing close", []string{"--zzzzzzzzz"}, ""},
		{"no flags", []string{"positional"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, makeFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
