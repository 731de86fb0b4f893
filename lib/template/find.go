// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package template

import "strings"

// FindVariable looks up a field by name, case-insensitively. The
// template's own tree is searched first, then each include in
// declaration order, depth first. Include cycles are searched once.
//
// Results are remembered on t until [Set.FillIncludes] relinks the
// includes. Only this outermost call is cached: a search entered
// through an include may have been cut short by the visited set.
func (t *Template) FindVariable(name string) (Variable, bool) {
	if name == "" {
		return Variable{}, false
	}
	key := strings.ToLower(name)
	if cached, ok := t.resolved[key]; ok {
		return cached.variable, cached.found
	}
	variable, found := t.findVariable(key, make(map[*Template]bool))
	if t.resolved == nil {
		t.resolved = make(map[string]resolution)
	}
	t.resolved[key] = resolution{variable: variable, found: found}
	return variable, found
}

func (t *Template) findVariable(key string, visited map[*Template]bool) (Variable, bool) {
	if visited[t] {
		return Variable{}, false
	}
	visited[t] = true

	if t.byName == nil {
		t.indexVariables()
	}
	if id, ok := t.byName[key]; ok {
		return t.variable(id), true
	}
	for _, include := range t.includes {
		if found, ok := include.findVariable(key, visited); ok {
			return found, true
		}
	}
	return Variable{}, false
}

// Variables returns every field reachable from the template, in the
// order FindVariable would prefer them. A name shadowed by an earlier
// declaration appears once.
func (t *Template) Variables() []Variable {
	var result []Variable
	seen := make(map[string]bool)
	t.collectVariables(&result, seen, make(map[*Template]bool))
	return result
}

func (t *Template) collectVariables(result *[]Variable, seen map[string]bool, visited map[*Template]bool) {
	if visited[t] {
		return
	}
	visited[t] = true

	for id := range t.nodes {
		node := &t.nodes[id]
		if !node.IsVariable() || node.varType.Base == TypeInclude {
			continue
		}
		name, _ := node.Value("name")
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		*result = append(*result, t.variable(NodeID(id)))
	}
	for _, include := range t.includes {
		include.collectVariables(result, seen, visited)
	}
}

// IncludeTargets returns the normalized target key of every include
// variable in the template's own tree.
func (t *Template) IncludeTargets() []string {
	var targets []string
	for id := range t.nodes {
		node := &t.nodes[id]
		if !node.IsVariable() || node.varType.Base != TypeInclude {
			continue
		}
		target, _ := node.Value("value")
		if strings.TrimSpace(target) == "" {
			target, _ = node.Value("defaultValue")
		}
		if target = NormalizeInclude(target); target != "" {
			targets = append(targets, target)
		}
	}
	return targets
}

// reaches reports whether target is reachable from t through includes.
func (t *Template) reaches(target *Template, visited map[*Template]bool) bool {
	if visited[t] {
		return false
	}
	visited[t] = true
	for _, include := range t.includes {
		if include == target || include.reaches(target, visited) {
			return true
		}
	}
	return false
}
