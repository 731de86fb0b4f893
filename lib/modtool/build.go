// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modtool

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bureau-foundation/arzedit/lib/arz"
	"github.com/bureau-foundation/arzedit/lib/asset"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/binhash"
	"github.com/bureau-foundation/arzedit/lib/buildcache"
	"github.com/bureau-foundation/arzedit/lib/dbr"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/progress"
	"github.com/bureau-foundation/arzedit/lib/template"
)

// DatabaseOptions controls [BuildDatabase].
type DatabaseOptions struct {
	// ModDir is the mod folder. It is always the first template root
	// and record names are relative to it.
	ModDir string

	// Output is the database file to write.
	Output string

	// TemplateRoots are searched after ModDir; a template here replaces
	// a mod template with the same key.
	TemplateRoots []string

	// BuiltinArchive, when set, is an archive of stock templates used
	// for any key the folders do not provide.
	BuiltinArchive string

	// Subdirs limits the build to database/<subdir> folders of ModDir.
	// Files, when non-empty, takes precedence over both.
	Subdirs []string
	Files   []string

	FillDefaults bool

	// CachePath enables the build cache stored at that path.
	CachePath string
}

// LoadTemplates builds the template set for a mod: the mod folder,
// then the extra roots, then the built-in archive for whatever is still
// missing. Includes are linked before returning.
func LoadTemplates(ctx context.Context, env Env, modDir string, roots []string, builtinArchive string) (*template.Set, batch.Summary, error) {
	env = env.resolve()
	set := template.NewSet(env.Logger)

	summary, err := set.LoadRoots(ctx, env.Provider, append([]string{modDir}, roots...))
	if err != nil {
		return nil, summary, err
	}
	progress.Logf(env.Sink, "folder templates: %d", set.Len())

	if builtinArchive != "" {
		reader, file, err := env.openArchive(builtinArchive)
		if err != nil {
			return nil, summary, fmt.Errorf("built-in templates: %w", err)
		}
		before := set.Len()
		builtin, err := set.AddArchive(ctx, reader)
		file.Close()
		summary.Merge(builtin)
		if err != nil {
			return nil, summary, err
		}
		progress.Logf(env.Sink, "built-in templates: %d", set.Len()-before)
	}

	set.FillIncludes()
	return set, summary, nil
}

func (opts DatabaseOptions) sources(env Env) ([]string, error) {
	if len(opts.Files) > 0 {
		return opts.Files, nil
	}
	if len(opts.Subdirs) == 0 {
		return env.Provider.Walk(opts.ModDir, ".dbr")
	}
	var files []string
	for _, subdir := range opts.Subdirs {
		found, err := env.Provider.Walk(filepath.Join(opts.ModDir, "database", subdir), ".dbr")
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// BuildDatabase compiles the mod's record files into one database.
// Records are built one at a time in path order; a record that fails to
// build is tallied and left out while the rest continue.
func BuildDatabase(ctx context.Context, env Env, opts DatabaseOptions) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	env.Sink.Report(0, "parsing templates")

	templates, templateSummary, err := LoadTemplates(ctx, env, opts.ModDir, opts.TemplateRoots, opts.BuiltinArchive)
	if err != nil {
		return batch.Summary{}, err
	}
	for _, skipped := range templateSummary.Skipped {
		progress.Warnf(env.Sink, "template %s: %v", skipped.Item, skipped.Err)
	}
	env.Sink.Report(10, fmt.Sprintf("%d templates", templates.Len()))

	files, err := opts.sources(env)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("listing record files: %w", err)
	}
	progress.Logf(env.Sink, "building %d records", len(files))

	var cache *buildcache.Cache
	if opts.CachePath != "" {
		settings := buildcache.Settings{FillDefaults: opts.FillDefaults, TextEncoding: env.Codec.Name()}
		cache = buildcache.Load(env.Provider, opts.CachePath, templates.Fingerprint(), settings, env.Logger)
	}

	writer := arz.NewWriter(arz.WithCodec(env.Codec), arz.WithLogger(env.Logger))
	builder := dbr.NewBuilder(templates, writer.Strings(), env.Logger)
	builder.FillDefaults = opts.FillDefaults

	var summary batch.Summary
	for index, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name, err := dbr.RecordName(file, opts.ModDir)
		if err != nil {
			summary.Fail(file, err)
			continue
		}
		env.Sink.Report(progress.Scale(20, 90, index, len(files)), "building "+name)

		record, err := buildRecord(env, builder, cache, name, file)
		if err != nil {
			progress.Errorf(env.Sink, "%s: %v", name, err)
			summary.Fail(name, err)
			continue
		}
		if err := writer.Add(record); err != nil {
			return summary, err
		}
		summary.Succeed()
	}

	env.Sink.Report(92, "writing "+opts.Output)
	if err := writeDatabase(env, writer, opts.Output); err != nil {
		return summary, err
	}
	if cache != nil {
		progress.Logf(env.Sink, "build cache: %d reused, %d rebuilt", cache.Hits(), cache.Misses())
		if err := cache.Save(env.Provider, opts.CachePath); err != nil {
			progress.Warnf(env.Sink, "saving build cache: %v", err)
		}
	}
	env.finish(&summary, start)
	return summary, nil
}

func buildRecord(env Env, builder *dbr.Builder, cache *buildcache.Cache, name, file string) (*arz.Record, error) {
	info, err := env.Provider.Stat(file)
	if err != nil {
		return nil, err
	}
	data, err := readFile(env.Provider, file)
	if err != nil {
		return nil, err
	}

	var digest binhash.Digest
	if cache != nil {
		digest = binhash.Sum(data)
		if record, ok := cache.Replay(name, digest, info.ModTime(), builder.Strings); ok {
			return record, nil
		}
	}
	record, err := builder.Build(name, info.ModTime(), env.Codec.SplitLines(data))
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Store(digest, record)
	}
	return record, nil
}

// writeDatabase replaces output only once the whole database has been
// written.
func writeDatabase(env Env, writer *arz.Writer, output string) error {
	return fsys.WriteAtomic(env.Provider, output, func(file fsys.WriteFile) error {
		if _, err := writer.WriteTo(file); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		return nil
	})
}

// AssetOptions controls [CompileAssets].
type AssetOptions struct {
	AssetDir    string
	SourceDir   string
	ResourceDir string
	Runner      asset.Runner
}

// CompileAssets compiles every descriptor under AssetDir. A missing
// asset folder is not an error; there is simply nothing to do.
func CompileAssets(ctx context.Context, env Env, opts AssetOptions) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	var summary batch.Summary
	if !exists(env.Provider, opts.AssetDir) {
		progress.Warnf(env.Sink, "no asset folder %s, skipping compilation", opts.AssetDir)
		env.finish(&summary, start)
		return summary, nil
	}
	files, err := env.Provider.Walk(opts.AssetDir, "")
	if err != nil {
		return summary, fmt.Errorf("listing assets: %w", err)
	}
	if opts.Runner == nil {
		opts.Runner = asset.ExecRunner{}
	}
	compiler := &asset.Compiler{
		SourceDir:   opts.SourceDir,
		ResourceDir: opts.ResourceDir,
		Runner:      opts.Runner,
		Provider:    env.Provider,
		Logger:      env.Logger,
	}
	for index, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name, err := compileAsset(ctx, env, compiler, opts.AssetDir, file)
		env.Sink.Report(progress.Scale(0, 95, index, len(files)), "compiling "+name)
		switch {
		case errors.Is(err, asset.ErrUnsupported), errors.Is(err, asset.ErrNotAsset):
			progress.Warnf(env.Sink, "cannot compile %s: %v", name, err)
			summary.Skip(name, err.Error())
		case err != nil:
			progress.Errorf(env.Sink, "compiling %s: %v", name, err)
			summary.Fail(name, err)
		default:
			summary.Succeed()
		}
	}
	env.finish(&summary, start)
	return summary, nil
}

func compileAsset(ctx context.Context, env Env, compiler *asset.Compiler, assetDir, file string) (string, error) {
	name, err := filepath.Rel(assetDir, file)
	if err != nil {
		return file, err
	}
	name = filepath.ToSlash(name)
	source, err := env.Provider.Open(file)
	if err != nil {
		return name, err
	}
	descriptor, err := asset.Parse(name, source)
	source.Close()
	if err != nil {
		return name, err
	}
	return name, compiler.Compile(ctx, descriptor)
}

// PackResources packs each folder directly under resourceDir into an
// archive named after it, next to the folder.
func PackResources(ctx context.Context, env Env, resourceDir string) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	var summary batch.Summary
	if !exists(env.Provider, resourceDir) {
		progress.Warnf(env.Sink, "resource folder %s not found, skipping", resourceDir)
		env.finish(&summary, start)
		return summary, nil
	}
	folders, err := env.Provider.Subdirectories(resourceDir)
	if err != nil {
		return summary, err
	}
	for index, folder := range folders {
		output := folder + ".arc"
		progress.Logf(env.Sink, "packing folder %s to %s", folder, output)
		from := progress.Scale(0, 95, index-1, len(folders))
		to := progress.Scale(0, 95, index, len(folders))
		packed, err := packFolder(ctx, env, PackOptions{Folder: folder, Output: output}, from, to)
		summary.Merge(packed)
		if err != nil {
			return summary, err
		}
	}
	env.finish(&summary, start)
	return summary, nil
}

// BuildOptions controls [Build].
type BuildOptions struct {
	ModDir string

	// BuildDir receives database/<mod>.arz and resources/. Empty means
	// ModDir.
	BuildDir string

	SkipAssets    bool
	SkipDatabase  bool
	SkipResources bool

	// Database carries the template and record selection. ModDir and
	// Output are filled in by Build.
	Database DatabaseOptions

	Runner asset.Runner
}

// Build runs the mod build: assets, then the database, then resource
// archives. Each stage's summary is merged into the result; a stage's
// fatal error ends the build.
func Build(ctx context.Context, env Env, opts BuildOptions) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = opts.ModDir
	}
	resourceDir := filepath.Join(buildDir, "resources")
	stage := env
	stage.Sink = quietSink{env.Sink}

	var summary batch.Summary
	if !opts.SkipAssets {
		env.Sink.Report(0, "compiling assets")
		compiled, err := CompileAssets(ctx, stage, AssetOptions{
			AssetDir:    filepath.Join(opts.ModDir, "assets"),
			SourceDir:   filepath.Join(opts.ModDir, "source"),
			ResourceDir: resourceDir,
			Runner:      opts.Runner,
		})
		summary.Merge(compiled)
		if err != nil {
			return summary, fmt.Errorf("compiling assets: %w", err)
		}
	}
	if !opts.SkipDatabase {
		env.Sink.Report(30, "building database")
		database := opts.Database
		database.ModDir = opts.ModDir
		database.Output = filepath.Join(buildDir, "database", filepath.Base(filepath.Clean(opts.ModDir))+".arz")
		built, err := BuildDatabase(ctx, stage, database)
		summary.Merge(built)
		if err != nil {
			return summary, fmt.Errorf("building database: %w", err)
		}
	}
	if !opts.SkipResources {
		env.Sink.Report(80, "packing resources")
		packed, err := PackResources(ctx, stage, resourceDir)
		summary.Merge(packed)
		if err != nil {
			return summary, fmt.Errorf("packing resources: %w", err)
		}
	}
	env.finish(&summary, start)
	return summary, nil
}
