// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package textenc converts between Go strings and the code page used
// for names and string values inside archive and database files.
//
// The containers carry no encoding marker. Files written by the stock
// game tools use the Windows ANSI code page; community builds for
// Chinese locales use GBK, which is byte-identical to ASCII for plain
// paths. Characters that cannot be represented are replaced rather
// than failing the write.
package textenc

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Codec encodes and decodes strings for one code page. The zero value
// is not usable; obtain one from [Lookup] or the package variables.
type Codec struct {
	name     string
	encoding encoding.Encoding
}

var (
	// GBK is the default; it matches the code page the mod tools ship with.
	GBK = Codec{name: "gbk", encoding: simplifiedchinese.GBK}

	// Windows1252 is the Western European ANSI code page.
	Windows1252 = Codec{name: "windows-1252", encoding: charmap.Windows1252}

	// UTF8 passes bytes through unchanged.
	UTF8 = Codec{name: "utf-8", encoding: unicode.UTF8}
)

// Default is the codec used when nothing is configured.
var Default = GBK

// Lookup returns the codec with the given name. Names are matched
// case-insensitively; "cp1252" and "utf8" are accepted as aliases.
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gbk", "cp936":
		return GBK, nil
	case "windows-1252", "cp1252":
		return Windows1252, nil
	case "utf-8", "utf8":
		return UTF8, nil
	default:
		return Codec{}, fmt.Errorf("unknown text encoding %q (want gbk, windows-1252 or utf-8)", name)
	}
}

// Name returns the canonical name of the code page.
func (c Codec) Name() string { return c.name }

// Encode converts s to code page bytes. Unrepresentable characters are
// replaced with the code page's substitution byte.
func (c Codec) Encode(s string) []byte {
	if isASCII(s) {
		return []byte(s)
	}
	encoder := encoding.ReplaceUnsupported(c.encoding.NewEncoder())
	out, err := encoder.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// Decode converts code page bytes to a Go string.
func (c Codec) Decode(data []byte) string {
	if isASCII(string(data)) {
		return string(data)
	}
	out, err := c.encoding.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// DecodeText decodes a whole text file. A leading UTF-8 or UTF-16 byte
// order mark selects that encoding and is dropped; without one the
// code page applies as in [Codec.Decode]. Editors on Windows commonly
// save record sources with a UTF-8 mark.
func (c Codec) DecodeText(data []byte) string {
	if isASCII(string(data)) {
		return string(data)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(c.encoding.NewDecoder()), data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
