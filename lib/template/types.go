// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package template

import "strings"

// BaseType is the scalar kind of a template variable.
type BaseType uint8

const (
	TypeUnknown BaseType = iota
	TypeInt
	TypeReal
	TypeBool
	TypeString
	// TypeFilePath is a string holding a game path. Values are
	// lowercased and use forward slashes.
	TypeFilePath
	// TypeInclude names another template rather than declaring a
	// field.
	TypeInclude
)

func (b BaseType) String() string {
	switch b {
	case TypeInt:
		return "int"
	case TypeReal:
		return "real"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeFilePath:
		return "file"
	case TypeInclude:
		return "include"
	default:
		return "unknown"
	}
}

// VarType is the resolved type of a variable: a base type, optionally
// as an array of that type.
type VarType struct {
	Base  BaseType
	Array bool
}

func (v VarType) String() string {
	if v.Array {
		return "array of " + v.Base.String()
	}
	return v.Base.String()
}

// ResolveType maps the "type" and "class" values of a variable block
// to a VarType. Any "file_*" type is a file path; "equation" is a
// string.
func ResolveType(typeName, class string) VarType {
	resolved := VarType{Array: strings.EqualFold(strings.TrimSpace(class), "array")}
	typeName = strings.ToLower(strings.TrimSpace(typeName))
	switch {
	case typeName == "string", typeName == "equation", typeName == "file":
		resolved.Base = TypeString
	case strings.HasPrefix(typeName, "file_"):
		resolved.Base = TypeFilePath
	case typeName == "real":
		resolved.Base = TypeReal
	case typeName == "bool":
		resolved.Base = TypeBool
	case typeName == "int":
		resolved.Base = TypeInt
	case typeName == "include":
		resolved.Base = TypeInclude
	default:
		resolved.Base = TypeUnknown
	}
	return resolved
}

// Variable is a resolved field declaration.
type Variable struct {
	Name         string
	Type         VarType
	Class        string
	DefaultValue string
	// TypeName is the "type" value as written, kept for diagnostics.
	TypeName string
	// Template is the key of the template that declares the variable.
	Template string
}

// TemplateNameVariable is the implicit first field of every record. It
// is not declared by any template.
var TemplateNameVariable = Variable{
	Name:     "templateName",
	Type:     VarType{Base: TypeString},
	Class:    "variable",
	TypeName: "string",
}
