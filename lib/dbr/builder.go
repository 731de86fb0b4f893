// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dbr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bureau-foundation/arzedit/lib/arz"
	"github.com/bureau-foundation/arzedit/lib/stringtable"
	"github.com/bureau-foundation/arzedit/lib/template"
	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// templateNameField is the key of the line that selects the template.
const templateNameField = "templateName"

// maxValues is the most value slots one entry can encode.
const maxValues = 1<<16 - 1

var (
	// ErrNoTemplateName is returned for source text without a
	// templateName line.
	ErrNoTemplateName = errors.New("record has no templateName")

	// ErrTemplateNotFound is returned when the templateName does not
	// resolve to a loaded template.
	ErrTemplateNotFound = errors.New("template not found")
)

// Builder turns record source text into records bound to one string
// table. A Builder is used by one goroutine at a time.
type Builder struct {
	Templates *template.Set
	Strings   *stringtable.Table

	// FillDefaults adds every template field missing from the source
	// text, valued with the field's defaultValue.
	FillDefaults bool

	Logger *slog.Logger
}

// NewBuilder returns a Builder with FillDefaults enabled.
func NewBuilder(templates *template.Set, table *stringtable.Table, logger *slog.Logger) *Builder {
	return &Builder{
		Templates:    templates,
		Strings:      table,
		FillDefaults: true,
		Logger:       logger,
	}
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Build parses lines into a record named name. The first entry is
// always templateName; the rest are sorted by field name.
func (b *Builder) Build(name string, modTime time.Time, lines []string) (*arz.Record, error) {
	logger := b.logger()
	b.Strings.Add(name)

	tpl, templateLine, err := b.resolveTemplate(lines)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", name, err)
	}

	record := arz.NewRecord(name, "", modTime, b.Strings, logger)
	state := &recordState{
		builder: b,
		record:  record,
		logger:  logger.With("record", name),
		index:   make(map[string]int),
		names:   []string{templateLine[0]},
	}
	record.Entries = append(record.Entries, arz.Entry{
		Type:   arz.String,
		NameID: b.Strings.Add(templateLine[0]),
		Values: []int32{b.Strings.Add(templateLine[1])},
	})
	state.index[strings.ToLower(templateNameField)] = 0

	for number, line := range lines {
		state.assignLine(number+1, line, tpl)
	}
	if b.FillDefaults {
		state.fillDefaults(tpl)
	}
	state.sortEntries()
	return record, nil
}

// resolveTemplate finds the first templateName line and the template
// it names.
func (b *Builder) resolveTemplate(lines []string) (*template.Template, []string, error) {
	for _, line := range lines {
		if !strings.HasPrefix(line, templateNameField) {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
			return nil, nil, fmt.Errorf("%w: empty templateName", ErrTemplateNotFound)
		}
		tpl, ok := b.Templates.Resolve(fields[1])
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, fields[1])
		}
		return tpl, fields, nil
	}
	return nil, nil, ErrNoTemplateName
}

// recordState is the in-progress record of one Build call.
type recordState struct {
	builder *Builder
	record  *arz.Record
	logger  *slog.Logger
	// index maps a lowercased field name to its entry.
	index map[string]int
	// names parallels record.Entries.
	names []string
}

func (s *recordState) assignLine(number int, line string, tpl *template.Template) {
	if strings.TrimSpace(line) == "" {
		return
	}
	fields := strings.Split(line, ",")
	switch len(fields) {
	case 3:
	case 2:
		s.logger.Warn("line has no trailing comma", "line", number, "text", line)
	default:
		s.logger.Warn("skipping malformed line", "line", number, "text", line)
		return
	}

	fieldName, value := fields[0], fields[1]
	if fieldName == "" {
		s.logger.Warn("skipping line with empty field name", "line", number)
		return
	}
	if fieldName == templateNameField {
		return
	}
	variable, ok := tpl.FindVariable(fieldName)
	if !ok {
		s.logger.Debug("field not declared by template", "field", fieldName)
		return
	}

	key := strings.ToLower(fieldName)
	if key == "class" {
		s.record.Type = value
		if strings.TrimSpace(value) == "" {
			s.record.Type = variable.DefaultValue
		}
	}
	existing, duplicate := s.index[key]
	if duplicate {
		s.logger.Info("duplicate field, overwriting", "field", fieldName, "line", number)
	}
	entry, ok := s.convert(variable, fieldName, value)
	if !ok {
		return
	}
	if duplicate {
		entry.NameID = s.record.Entries[existing].NameID
		s.record.Entries[existing] = entry
		return
	}
	s.add(fieldName, entry)
}

func (s *recordState) add(fieldName string, entry arz.Entry) {
	s.index[strings.ToLower(fieldName)] = len(s.record.Entries)
	s.record.Entries = append(s.record.Entries, entry)
	s.names = append(s.names, fieldName)
}

// convert parses value for variable. A blank value takes the
// variable's default. It reports false when the field should be left
// out.
func (s *recordState) convert(variable template.Variable, fieldName, value string) (arz.Entry, bool) {
	entryType, ok := entryTypeOf(variable.Type.Base)
	if !ok {
		s.logger.Warn("field has unsupported type", "field", fieldName, "type", variable.TypeName, "template", variable.Template)
		return arz.Entry{}, false
	}

	if strings.TrimSpace(value) == "" {
		value = variable.DefaultValue
		if strings.TrimSpace(value) == "" {
			if !s.builder.FillDefaults {
				return arz.Entry{}, false
			}
			return s.zeroEntry(fieldName, entryType), true
		}
	}

	segments := splitValue(value, variable.Type)
	if len(segments) > maxValues {
		s.logger.Warn("field has too many values", "field", fieldName, "count", len(segments))
		return arz.Entry{}, false
	}
	entry := arz.Entry{
		Type:   entryType,
		NameID: s.builder.Strings.Add(fieldName),
		Values: make([]int32, len(segments)),
	}
	for i, segment := range segments {
		entry.Values[i] = s.parseSlot(entryType, segment, fieldName)
	}
	return entry, true
}

func (s *recordState) zeroEntry(fieldName string, entryType arz.EntryType) arz.Entry {
	slot := int32(0)
	if entryType == arz.String {
		slot = s.builder.Strings.Add("")
	}
	return arz.Entry{Type: entryType, NameID: s.builder.Strings.Add(fieldName), Values: []int32{slot}}
}

func (s *recordState) parseSlot(entryType arz.EntryType, segment, fieldName string) int32 {
	switch entryType {
	case arz.Int:
		slot, exact := ParseInt(segment)
		if !exact {
			s.logger.Debug("integer value was not a plain integer", "field", fieldName, "value", segment, "stored", slot)
		}
		return slot
	case arz.Real:
		value, ok := ParseReal(segment)
		if !ok {
			s.logger.Debug("invalid real value, storing 0", "field", fieldName, "value", segment)
		}
		return arz.FloatSlot(value)
	case arz.Bool:
		slot, ok := ParseBool(segment)
		if !ok {
			s.logger.Debug("invalid boolean value, storing 0", "field", fieldName, "value", segment)
		}
		return slot
	default:
		return s.builder.Strings.Add(segment)
	}
}

// fillDefaults adds every template field the source text left out.
func (s *recordState) fillDefaults(tpl *template.Template) {
	for _, variable := range tpl.Variables() {
		key := strings.ToLower(variable.Name)
		if _, present := s.index[key]; present {
			continue
		}
		if _, ok := entryTypeOf(variable.Type.Base); !ok {
			s.logger.Debug("not filling field of unsupported type", "field", variable.Name, "type", variable.TypeName)
			continue
		}
		entry, ok := s.convert(variable, variable.Name, "")
		if !ok {
			continue
		}
		if key == "class" && s.record.Type == "" {
			s.record.Type = variable.DefaultValue
		}
		s.add(variable.Name, entry)
	}
}

// sortEntries orders every entry after templateName by name, comparing
// bytes.
func (s *recordState) sortEntries() {
	entries := s.record.Entries[1:]
	names := s.names[1:]
	sort.Stable(byName{entries: entries, names: names})
}

type byName struct {
	entries []arz.Entry
	names   []string
}

func (b byName) Len() int           { return len(b.entries) }
func (b byName) Less(i, j int) bool { return b.names[i] < b.names[j] }
func (b byName) Swap(i, j int) {
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	b.names[i], b.names[j] = b.names[j], b.names[i]
}

func entryTypeOf(base template.BaseType) (arz.EntryType, bool) {
	switch base {
	case template.TypeInt:
		return arz.Int, true
	case template.TypeReal:
		return arz.Real, true
	case template.TypeBool:
		return arz.Bool, true
	case template.TypeString, template.TypeFilePath:
		return arz.String, true
	default:
		return 0, false
	}
}

// RecordName derives a record name from a source file path: relative
// to the mod root, lowercased, slash separated, without a leading
// "database/".
func RecordName(file, modRoot string) (string, error) {
	relative, err := filepath.Rel(modRoot, file)
	if err != nil {
		return "", err
	}
	name := strings.ToLower(filepath.ToSlash(relative))
	name = strings.TrimLeft(name, "/")
	return strings.TrimPrefix(name, "database/"), nil
}

// ReadLines reads record source text in the given code page.
func ReadLines(r io.Reader, codec textenc.Codec) ([]string, error) {
	return codec.ReadLines(r)
}
