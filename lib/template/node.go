// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package template

import "strings"

// NodeID addresses a node in the arena of its owning [Template].
type NodeID int32

// noNode marks the absence of a parent.
const noNode NodeID = -1

// Node is one block of a template file. Keys of Values are stored as
// written; lookups through [Node.Value] fold case.
type Node struct {
	Kind     string
	Values   map[string]string
	Children []NodeID
	Parent   NodeID
	// Line is the one-based line of the block's kind, for diagnostics.
	Line int
	// varType is resolved at parse time for variable blocks.
	varType VarType
}

// Value returns the value for key, matching case-insensitively.
func (n *Node) Value(key string) (string, bool) {
	if value, ok := n.Values[key]; ok {
		return value, true
	}
	for k, value := range n.Values {
		if strings.EqualFold(k, key) {
			return value, true
		}
	}
	return "", false
}

// IsVariable reports whether the node declares a field or an include.
func (n *Node) IsVariable() bool {
	return n.Kind == "variable"
}

// Template is a parsed template file.
type Template struct {
	// Key is the normalized lookup key, for example
	// "database/templates/weapon.tpl". Empty until the template is
	// added to a Set.
	Key string
	// Source is the file or archive entry the template was parsed from.
	Source string

	nodes    []Node
	includes []*Template
	// byName caches variable lookups in this template's own tree.
	byName map[string]NodeID
	// resolved caches complete FindVariable results, misses included,
	// keyed by lowercase name. Cleared whenever includes are relinked.
	resolved map[string]resolution
	// digest is the content digest used for set fingerprints.
	digest [32]byte
}

// Root is the top-level node of the template.
func (t *Template) Root() NodeID { return 0 }

// Node returns the node with the given ID.
func (t *Template) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len is the number of nodes in the template.
func (t *Template) Len() int { return len(t.nodes) }

// Includes returns the templates linked by include variables, in
// declaration order.
func (t *Template) Includes() []*Template {
	return t.includes
}

func (t *Template) addNode(node Node) NodeID {
	t.nodes = append(t.nodes, node)
	return NodeID(len(t.nodes) - 1)
}

// variable converts a variable node into its public view.
func (t *Template) variable(id NodeID) Variable {
	node := &t.nodes[id]
	name, _ := node.Value("name")
	class, _ := node.Value("class")
	defaultValue, _ := node.Value("defaultValue")
	typeName, _ := node.Value("type")
	return Variable{
		Name:         name,
		Type:         node.varType,
		Class:        class,
		DefaultValue: defaultValue,
		TypeName:     typeName,
		Template:     t.Key,
	}
}

type resolution struct {
	variable Variable
	found    bool
}

// indexVariables fills byName with every field variable in the
// template's own tree. The first declaration of a name wins.
func (t *Template) indexVariables() {
	t.byName = make(map[string]NodeID)
	for id := range t.nodes {
		node := &t.nodes[id]
		if !node.IsVariable() || node.varType.Base == TypeInclude {
			continue
		}
		name, ok := node.Value("name")
		if !ok || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, exists := t.byName[key]; !exists {
			t.byName[key] = NodeID(id)
		}
	}
}
