// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package template parses and resolves the schema files (.tpl) that
// describe which fields a database record may carry.
//
// A template is a tree of blocks:
//
//	fileNameHistoryEntry
//	{
//		Group
//		{
//			name = "Header"
//			Variable
//			{
//				name = "damage"
//				class = "variable"
//				type = "real"
//				defaultValue = "0"
//			}
//		}
//	}
//
// Each block has a kind (the line before its brace), a set of key =
// value pairs and nested blocks. Blocks of kind "variable" declare a
// field; their "type" and "class" are resolved once, at parse time,
// into a [VarType]. A variable of type "include" pulls every variable
// of another template into scope.
//
// # Storage
//
// Every [Template] owns an arena of nodes addressed by [NodeID]. Include
// references point at other templates and are never owned, so include
// graphs may contain cycles. Every traversal that can follow an include
// carries a visited set of templates; a template is searched at most
// once per lookup, which keeps cyclic includes finite.
//
// # Sets
//
// A [Set] maps normalized template keys ("database/templates/x.tpl") to
// parsed templates. Templates are loaded from ordered root folders,
// later roots overriding earlier ones, and optionally from a template
// archive that never overrides anything. After loading,
// [Set.FillIncludes] links include variables to their targets.
package template
