// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// ParseError describes a structural problem in a template file.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template %s line %d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("template %s: %s", e.File, e.Reason)
}

// Parse builds a template from the lines of a .tpl file. The source
// name is used in errors only. The first non-blank line names the root
// block, which must be followed by an opening brace.
func Parse(source string, lines []string) (*Template, error) {
	parser := &parser{source: source, lines: lines, tpl: &Template{Source: source}}

	start := parser.skipBlank(0)
	if start >= len(lines) {
		return nil, &ParseError{File: source, Reason: "no root block"}
	}
	if _, err := parser.parseBlock(start, noNode); err != nil {
		return nil, err
	}

	tpl := parser.tpl
	tpl.indexVariables()
	tpl.digest = blake3.Sum256([]byte(strings.Join(lines, "\n")))
	return tpl, nil
}

type parser struct {
	source string
	lines  []string
	tpl    *Template
}

func (p *parser) skipBlank(i int) int {
	for i < len(p.lines) && strings.TrimSpace(p.lines[i]) == "" {
		i++
	}
	return i
}

func (p *parser) fail(line int, format string, args ...any) error {
	return &ParseError{File: p.source, Line: line + 1, Reason: fmt.Sprintf(format, args...)}
}

// parseBlock parses the block whose kind is on line i and returns the
// index of its closing brace.
func (p *parser) parseBlock(i int, parent NodeID) (int, error) {
	id := p.tpl.addNode(Node{
		Kind:   strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p.lines[i]), "\ufeff")),
		Values: make(map[string]string),
		Parent: parent,
		Line:   i + 1,
	})
	if parent != noNode {
		p.tpl.nodes[parent].Children = append(p.tpl.nodes[parent].Children, id)
	}

	open := p.skipBlank(i + 1)
	if open >= len(p.lines) || strings.TrimSpace(p.lines[open]) != "{" {
		return 0, p.fail(i, "block %q is not followed by '{'", p.tpl.nodes[id].Kind)
	}

	for j := open + 1; j < len(p.lines); j++ {
		line := strings.TrimSpace(p.lines[j])
		switch {
		case line == "":
			continue
		case line == "}":
			p.finish(id)
			return j, nil
		case line == "{":
			return 0, p.fail(j, "unexpected '{'")
		case strings.Contains(line, "="):
			key, value, _ := strings.Cut(line, "=")
			key = strings.TrimSpace(key)
			if key == "" {
				return 0, p.fail(j, "empty key")
			}
			p.tpl.nodes[id].Values[key] = strings.Trim(strings.TrimSpace(value), `"`)
		default:
			end, err := p.parseBlock(j, id)
			if err != nil {
				return 0, err
			}
			j = end
		}
	}
	return 0, p.fail(i, "block %q is not closed", p.tpl.nodes[id].Kind)
}

// finish resolves the variable type once all values are known.
func (p *parser) finish(id NodeID) {
	node := &p.tpl.nodes[id]
	if !node.IsVariable() {
		return
	}
	typeName, _ := node.Value("type")
	class, _ := node.Value("class")
	node.varType = ResolveType(typeName, class)
}
