// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/arzedit/lib/bytecodec"
)

// Magic identifies an asset descriptor.
var Magic = [4]byte{'A', 'S', 'T', 0x02}

// ErrNotAsset reports a file that does not start with [Magic].
var ErrNotAsset = errors.New("not an asset descriptor")

// Type is the kind of resource a descriptor produces.
type Type int

const (
	TypeUnknown Type = iota
	TypeGeneric
	TypeText
	TypeQuest
	TypeBitmap
	TypeTexture
	TypeParticleFX
	TypeMap
	TypeMesh
	TypeWave
	TypeOgg
)

var typeNames = [...]string{
	TypeUnknown:    "unknown",
	TypeGeneric:    "generic",
	TypeText:       "text",
	TypeQuest:      "quest",
	TypeBitmap:     "bitmap",
	TypeTexture:    "texture",
	TypeParticleFX: "particlefx",
	TypeMap:        "map",
	TypeMesh:       "mesh",
	TypeWave:       "wave",
	TypeOgg:        "ogg",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

var typeTags = map[[3]byte]Type{
	{0, 0, 0}:       TypeGeneric,
	{'T', 'X', 'T'}: TypeText,
	{'Q', 'S', 'T'}: TypeQuest,
	{'M', 'A', 'P'}: TypeMap,
	{'T', 'E', 'X'}: TypeTexture,
	{'B', 'I', 'T'}: TypeBitmap,
	{'M', 'S', 'H'}: TypeMesh,
	{'P', 'F', 'X'}: TypeParticleFX,
	{'W', 'A', 'V'}: TypeWave,
	{'O', 'G', 'G'}: TypeOgg,
}

// TextureFormat is the pixel compression requested for a texture.
type TextureFormat uint8

const (
	FormatUncompressed TextureFormat = iota
	FormatDXT1
	FormatDXT3
	FormatDXT5
	FormatDSDT
)

// Flag returns the compiler's name for the format, or "" for formats
// the compiler is not told about.
func (f TextureFormat) Flag() string {
	switch f {
	case FormatDXT1:
		return "dxt1"
	case FormatDXT3:
		return "dxt3"
	case FormatDXT5:
		return "dxt5"
	case FormatDSDT:
		return "dsdt"
	}
	return ""
}

// Texture holds the texture compiler options of a TEX descriptor.
type Texture struct {
	Mipmaps   bool
	Format    TextureFormat
	NormalMap bool
	FPS       int32
}

// Mesh holds the model compiler options of an MSH descriptor.
type Mesh struct {
	// MIF is the material include file, relative to the source folder.
	MIF          string
	Tangents     bool
	VertexColors bool
}

// Asset is a decoded descriptor.
type Asset struct {
	// Name is the descriptor's path relative to the asset folder,
	// slash separated. The compiled resource keeps the same name.
	Name string

	Type Type
	Tag  [3]byte

	// Source is the input file relative to the source folder, slash
	// separated.
	Source string

	Texture *Texture
	Mesh    *Mesh
}

// TagString returns the type tag for messages, with NUL bytes removed.
func (a *Asset) TagString() string {
	return strings.TrimRight(string(a.Tag[:]), "\x00")
}

// Parse decodes the descriptor read from r. Name is recorded as given.
func Parse(name string, r io.Reader) (*Asset, error) {
	reader := bytecodec.NewReader(r)
	magic := reader.Bytes(len(Magic))
	if reader.Err() == nil && !bytes.Equal(magic, Magic[:]) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotAsset)
	}
	reader.Int32()
	reader.Int32()
	reader.Int16()

	asset := &Asset{Name: name}
	copy(asset.Tag[:], reader.Bytes(3))
	reader.Uint8()

	asset.Type = TypeUnknown
	if known, ok := typeTags[asset.Tag]; ok {
		asset.Type = known
	}
	asset.Source = normalizePath(reader.String())

	switch asset.Type {
	case TypeTexture:
		texture := &Texture{}
		texture.Mipmaps = reader.Bool()
		texture.Format = TextureFormat(reader.Uint8())
		reader.Skip(3)
		texture.NormalMap = reader.Bool()
		texture.FPS = reader.Int32()
		reader.Skip(4)
		asset.Texture = texture
	case TypeMesh:
		mesh := &Mesh{}
		mesh.MIF = normalizePath(reader.String())
		mesh.Tangents = reader.Bool()
		mesh.VertexColors = reader.Bool()
		asset.Mesh = mesh
	}

	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}
	return asset, nil
}

func normalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
