// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bureau-foundation/arzedit/lib/bytecodec"
	"github.com/bureau-foundation/arzedit/lib/fsys"
)

// External tool names, resolved against the tools folder.
const (
	MapCompiler     = "MapCompiler.exe"
	TextureCompiler = "TextureCompiler.exe"
	ModelCompiler   = "ModelCompiler.exe"
)

var (
	// ErrUnsupported reports a descriptor whose type tag is not known.
	ErrUnsupported = errors.New("unsupported asset type")

	// ErrNoModel reports a mesh source without an embedded model.
	ErrNoModel = errors.New("no model data in mesh source")
)

var (
	modelStart = []byte("MDL\x07")
	modelEnd   = []byte("ExportDataMDL")
)

// Runner starts an external tool and returns its standard output.
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// ExecRunner runs tools from ToolsDir as child processes.
type ExecRunner struct {
	ToolsDir string
}

func (r ExecRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	command := exec.CommandContext(ctx, filepath.Join(r.ToolsDir, tool), args...)
	output, err := command.Output()
	if err != nil {
		return output, fmt.Errorf("%s: %w", tool, err)
	}
	return output, nil
}

// Compiler turns descriptors into files under ResourceDir.
type Compiler struct {
	SourceDir   string
	ResourceDir string

	// TempDir holds the model extracted from a mesh source while the
	// model compiler runs. Empty means os.TempDir.
	TempDir string

	Runner   Runner
	Provider fsys.Provider

	// Logger receives tool invocations and output at debug level. Nil
	// discards them.
	Logger *slog.Logger
}

func (c *Compiler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Compile produces the resource for asset. Types without a compiler
// are copied from the source folder. Unknown types return
// [ErrUnsupported] and leave nothing behind.
func (c *Compiler) Compile(ctx context.Context, asset *Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Provider.MkdirAll(c.ResourceDir); err != nil {
		return fmt.Errorf("creating resource folder: %w", err)
	}

	source := filepath.Join(c.SourceDir, filepath.FromSlash(asset.Source))
	target := filepath.Join(c.ResourceDir, filepath.FromSlash(asset.Name))
	sourceArg := filepath.ToSlash(source)
	targetArg := filepath.ToSlash(target)
	folderArg := slashFolder(c.SourceDir)

	switch asset.Type {
	case TypeMap:
		return c.run(ctx, asset, MapCompiler, sourceArg, folderArg, targetArg)

	case TypeBitmap:
		return c.run(ctx, asset, TextureCompiler, sourceArg, targetArg, "-nopoweroftwo", "-nomipmaps")

	case TypeTexture:
		return c.run(ctx, asset, TextureCompiler, textureArgs(asset.Texture, sourceArg, targetArg)...)

	case TypeMesh:
		return c.compileMesh(ctx, asset, source, folderArg, targetArg)

	case TypeGeneric, TypeText, TypeQuest, TypeWave, TypeOgg, TypeParticleFX:
		return c.copy(source, target)
	}
	return fmt.Errorf("%s: %w %q", asset.Name, ErrUnsupported, asset.TagString())
}

func textureArgs(texture *Texture, source, target string) []string {
	args := []string{source, target, "-nopoweroftwo"}
	if texture == nil {
		return append(args, "-nomipmaps")
	}
	if flag := texture.Format.Flag(); flag != "" {
		args = append(args, "-format", flag)
	}
	if texture.NormalMap {
		args = append(args, "-normalmap")
	}
	if !texture.Mipmaps {
		args = append(args, "-nomipmaps")
	}
	// 20 is the compiler's own default.
	if texture.FPS > 0 && texture.FPS != 20 {
		args = append(args, "-fps", strconv.Itoa(int(texture.FPS)))
	}
	return args
}

func (c *Compiler) compileMesh(ctx context.Context, asset *Asset, source, folderArg, targetArg string) error {
	data, err := readAll(c.Provider, source)
	if err != nil {
		return err
	}
	model, err := ExtractMDL(data)
	if err != nil {
		return fmt.Errorf("%s: %w", asset.Name, err)
	}

	stem := strings.TrimSuffix(path.Base(asset.Source), path.Ext(asset.Source))
	temp, err := os.CreateTemp(c.TempDir, "temp-"+stem+"-*.mdl")
	if err != nil {
		return fmt.Errorf("creating model scratch file: %w", err)
	}
	defer os.Remove(temp.Name())
	if _, err := temp.Write(model); err != nil {
		temp.Close()
		return fmt.Errorf("writing model scratch file: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("writing model scratch file: %w", err)
	}

	args := []string{filepath.ToSlash(temp.Name())}
	if mesh := asset.Mesh; mesh != nil {
		if mesh.Tangents {
			args = append(args, "-tangents")
		}
		if mesh.VertexColors {
			args = append(args, "-vertexColors")
		}
		if strings.TrimSpace(mesh.MIF) != "" {
			args = append(args, "-mif", mesh.MIF, folderArg)
		}
	}
	args = append(args, targetArg)
	return c.run(ctx, asset, ModelCompiler, args...)
}

// ExtractMDL returns the model embedded in a mesh source: the bytes
// from the "MDL\x07" header up to the "ExportDataMDL" trailer.
func ExtractMDL(data []byte) ([]byte, error) {
	start := bytecodec.IndexOf(data, modelStart)
	if start < 0 {
		return nil, ErrNoModel
	}
	end := bytecodec.IndexOf(data, modelEnd)
	if end < start {
		return nil, ErrNoModel
	}
	return data[start:end], nil
}

func (c *Compiler) run(ctx context.Context, asset *Asset, tool string, args ...string) error {
	c.logger().Debug("running asset compiler", "asset", asset.Name, "tool", tool, "args", args)
	output, err := c.Runner.Run(ctx, tool, args...)
	if len(output) > 0 {
		c.logger().Debug("asset compiler output", "asset", asset.Name, "output", string(output))
	}
	if err != nil {
		return fmt.Errorf("compiling %s: %w", asset.Name, err)
	}
	return nil
}

func (c *Compiler) copy(source, target string) error {
	input, err := c.Provider.Open(source)
	if err != nil {
		return err
	}
	defer input.Close()

	if err := c.Provider.MkdirAll(filepath.Dir(target)); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	output, err := c.Provider.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		return fmt.Errorf("copying %s: %w", source, err)
	}
	return output.Close()
}

func readAll(provider fsys.Provider, name string) ([]byte, error) {
	file, err := provider.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// slashFolder returns dir with forward slashes and a trailing slash,
// the form the compilers expect for folder arguments.
func slashFolder(dir string) string {
	folder := filepath.ToSlash(dir)
	if !strings.HasSuffix(folder, "/") {
		folder += "/"
	}
	return folder
}
