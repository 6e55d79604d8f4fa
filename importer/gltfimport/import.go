// Package gltfimport converts glTF 2.0 documents into engine meshes, skeletons,
// materials and animation clips.
package gltfimport

import (
	"time"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/config"
	"github.com/mogaika/gltf_importer/engine/animation"
	"github.com/mogaika/gltf_importer/engine/materials"
	"github.com/mogaika/gltf_importer/engine/rendering"
	"github.com/mogaika/gltf_importer/logger"
	"github.com/mogaika/gltf_importer/utils/gltfutils"
)

type Options struct {
	MeshIndex          int
	ExtractTextures    bool
	OptimizeAnimations bool
}

func DefaultOptions() Options {
	return Options{ExtractTextures: true, OptimizeAnimations: true}
}

func OptionsFromConfig(c config.ImporterConfig) Options {
	return Options{
		MeshIndex:          c.MeshIndex,
		ExtractTextures:    c.ExtractTextures,
		OptimizeAnimations: c.Optimize,
	}
}

type Result struct {
	SourcePath             string
	Document               *gltf.Document
	Model                  *rendering.Model
	Materials              map[string]*materials.MaterialAsset
	Animations             map[string]*animation.AnimationClip
	EntityInfo             *EntityInfo
	TotalAnimationDuration time.Duration
	Report                 *Report
}

// Import opens the document at path and runs the full pipeline on it.
func Import(path string, opts Options) (*Result, error) {
	doc, err := gltfutils.Open(path)
	if err != nil {
		return nil, err
	}
	return ImportDocument(doc, path, opts)
}

// ImportDocument converts an already decoded document. sourcePath locates external
// images and receives extracted ones.
func ImportDocument(doc *gltf.Document, sourcePath string, opts Options) (*Result, error) {
	log := logger.Log.With(zap.String("source", sourcePath))

	model, nodeMapping, report, err := loadModel(doc, opts.MeshIndex)
	if err != nil {
		return nil, err
	}

	meshRoot := MeshRootName(doc, opts.MeshIndex)
	textures := NewTextureResolver(doc, sourcePath, meshRoot, opts.ExtractTextures)
	mats, matReport := LoadMaterials(doc, meshRoot, textures)
	report.Merge(matReport)

	clips, animReport := ConvertAnimations(doc, meshRoot, nodeMapping, opts.OptimizeAnimations)
	report.Merge(animReport)

	result := &Result{
		SourcePath:             sourcePath,
		Document:               doc,
		Model:                  model,
		Materials:              mats,
		Animations:             clips,
		EntityInfo:             ExtractEntityInfo(doc, opts.MeshIndex, mats),
		TotalAnimationDuration: TotalAnimationDuration(doc),
		Report:                 report,
	}

	log.Info("Imported",
		zap.String("model", meshRoot),
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("materials", len(mats)),
		zap.Int("animations", len(clips)),
		zap.Duration("total_animation", result.TotalAnimationDuration),
		zap.Int("failures", len(report.Failures)))
	return result, nil
}
