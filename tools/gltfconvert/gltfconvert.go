package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/config"
	"github.com/mogaika/gltf_importer/importer/gltfimport"
	"github.com/mogaika/gltf_importer/logger"
	"github.com/mogaika/gltf_importer/manifest"
	"github.com/mogaika/gltf_importer/utils"
	"github.com/mogaika/gltf_importer/utils/gltfutils"
)

type converter struct {
	opts   gltfimport.Options
	format manifest.Format
	dump   io.Writer
}

// convert imports one asset and writes its manifest next to it.
func (c *converter) convert(path string) (*manifest.Manifest, error) {
	result, err := gltfimport.Import(path, c.opts)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to import %q", path)
	}
	m := manifest.Build(result)
	out := manifest.PathFor(path, c.format)
	if err := m.Save(out); err != nil {
		return nil, err
	}
	logger.Info("Converted",
		zap.String("source", path),
		zap.String("manifest", out),
		zap.Int("assets", len(m.Assets)),
		zap.Int("failures", len(m.Failures)))
	for _, f := range m.Failures {
		logger.Warn("Entity skipped", zap.String("kind", string(f.Kind)), zap.String("name", f.Name), zap.String("error", f.Message))
	}
	if c.dump != nil {
		utils.Dump(c.dump, result.Model, result.EntityInfo)
	} else {
		utils.LogDump(result.EntityInfo)
	}
	return m, nil
}

// collectInputs expands directories into the supported assets they contain.
func collectInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) != "" && gltfutils.IsSupported(e.Name()) {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	var configPath, format, logLevel string
	var meshIndex int
	var noExtract, dump, watch bool
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&format, "format", "", "Manifest format: yaml, json or toml. Overrides config")
	flag.IntVar(&meshIndex, "mesh", -1, "Index of the mesh to import. Overrides config")
	flag.BoolVar(&noExtract, "no-extract", false, "Do not write embedded textures next to the source")
	flag.BoolVar(&dump, "dump", false, "Dump converted model and summary to stdout")
	flag.BoolVar(&watch, "watch", false, "Keep running and reconvert assets when they change")
	flag.StringVar(&logLevel, "log", "", "Log level. Overrides config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file.gltf|file.glb|dir>...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	c := &converter{opts: gltfimport.OptionsFromConfig(cfg.Importer)}
	if meshIndex >= 0 {
		c.opts.MeshIndex = meshIndex
	}
	if noExtract {
		c.opts.ExtractTextures = false
	}
	if format == "" {
		format = cfg.Importer.ManifestFormat
	}
	if c.format, err = manifest.ParseFormat(format); err != nil {
		log.Fatal(err)
	}
	if dump {
		c.dump = os.Stdout
	}

	files, err := collectInputs(flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	failed := 0
	for _, f := range files {
		if _, err := c.convert(f); err != nil {
			logger.Error("Conversion failed", zap.String("source", f), zap.Error(err))
			failed++
		}
	}

	if watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := c.watch(ctx, flag.Args()); err != nil {
			logger.Log.Fatal("Watch failed", zap.Error(err))
		}
		return
	}
	if failed != 0 {
		logger.Sync()
		os.Exit(1)
	}
}
