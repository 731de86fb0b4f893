// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type sharedParams struct {
	Config  string `flag:"config" desc:"config file"`
	Verbose bool   `flag:"verbose,v" desc:"debug output"`
}

func TestBindFlags_TypesAndDefaults(t *testing.T) {
	type params struct {
		sharedParams
		Output    string   `flag:"output,o" desc:"output file" default:"out.arz"`
		Overwrite bool     `flag:"overwrite,y" desc:"overwrite" default:"true"`
		Capacity  int      `flag:"capacity" desc:"cache capacity" default:"256"`
		Templates []string `flag:"templates,t" desc:"template roots" default:"a,b"`
		Untagged  string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Output != "out.arz" || !p.Overwrite || p.Capacity != 256 {
		t.Errorf("defaults = %+v", p)
	}
	if len(p.Templates) != 2 || p.Templates[0] != "a" || p.Templates[1] != "b" {
		t.Errorf("Templates = %v, want [a b]", p.Templates)
	}

	err := flagSet.Parse([]string{"-v", "--config", "arzedit.yaml", "-o", "mod.arz", "--overwrite=false", "--capacity", "8", "-t", "x", "-t", "y,z"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Verbose || p.Config != "arzedit.yaml" {
		t.Errorf("embedded flags not bound: %+v", p.sharedParams)
	}
	if p.Output != "mod.arz" || p.Overwrite || p.Capacity != 8 {
		t.Errorf("parsed = %+v", p)
	}
	if strings.Join(p.Templates, ",") != "x,y,z" {
		t.Errorf("Templates = %v, want [x y z]", p.Templates)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notStruct string
	if err := BindFlags(&notStruct, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a non-struct")
	}

	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unparseable default")
	}

	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %v, want unsupported type", err)
	}
}

func TestFlagsFromParams_PanicsOnInvalidParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic")
		}
	}()
	FlagsFromParams("bad", struct{}{})
}
