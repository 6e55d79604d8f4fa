package web

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/engine/animation"
	"github.com/mogaika/gltf_importer/engine/graphics"
	"github.com/mogaika/gltf_importer/engine/materials"
	"github.com/mogaika/gltf_importer/importer/gltfimport"
	"github.com/mogaika/gltf_importer/logger"
	"github.com/mogaika/gltf_importer/manifest"
	"github.com/mogaika/gltf_importer/status"
	"github.com/mogaika/gltf_importer/utils"
	"github.com/mogaika/gltf_importer/utils/gltfutils"
	"github.com/mogaika/gltf_importer/webutils"
)

var errNotFound = errors.New("not found")

func assetPath(file string) (string, error) {
	if file == "" || filepath.Base(file) != file || file == "." || file == ".." {
		return "", errors.Wrapf(errNotFound, "invalid asset name %q", file)
	}
	if !gltfutils.IsSupported(file) {
		return "", errors.Wrapf(gltfimport.ErrUnsupportedFormat, "%q", file)
	}
	return filepath.Join(AssetDirectory, file), nil
}

func writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound), errors.Is(err, os.ErrNotExist):
		webutils.WriteErrorCode(w, http.StatusNotFound, err)
	case errors.Is(err, gltfimport.ErrUnsupportedFormat), errors.Is(err, gltfimport.ErrNoMeshes):
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
	default:
		webutils.WriteError(w, err)
	}
}

func importAsset(file string) (*gltfimport.Result, error) {
	path, err := assetPath(file)
	if err != nil {
		return nil, err
	}
	status.Progress(0, "Importing %s", file)
	result, err := gltfimport.Import(path, ImportOptions)
	if err != nil {
		status.Error("Import of %s failed: %v", file, err)
		return nil, err
	}
	if result.Report.HasFailures() {
		status.Error("Imported %s with %d failures", file, len(result.Report.Failures))
	} else {
		status.Progress(1, "Imported %s", file)
	}
	return result, nil
}

func HandlerAjaxAssets(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(AssetDirectory)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && gltfutils.IsSupported(e.Name()) && filepath.Ext(e.Name()) != "" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	webutils.WriteJson(w, files)
}

type nodeView struct {
	Name        string     `json:"name"`
	ParentIndex int        `json:"parent"`
	Position    [3]float32 `json:"position"`
	Rotation    [3]float32 `json:"rotation_degrees"`
	Scale       [3]float32 `json:"scale"`
}

type meshView struct {
	Name          string   `json:"name"`
	MaterialIndex int      `json:"material"`
	VertexCount   int      `json:"vertices"`
	VertexStride  int      `json:"stride"`
	Elements      []string `json:"elements"`
	IndexCount    int      `json:"indices"`
	Skinned       bool     `json:"skinned"`
}

type assetView struct {
	Manifest *manifest.Manifest `json:"manifest"`
	Meshes   []meshView         `json:"meshes"`
	Skeleton []nodeView         `json:"skeleton"`
}

func HandlerAjaxAsset(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	result, err := importAsset(file)
	if err != nil {
		writeImportError(w, err)
		return
	}

	view := assetView{Manifest: manifest.Build(result)}
	for _, m := range result.Model.Meshes {
		mv := meshView{
			Name:          m.Name,
			MaterialIndex: m.MaterialIndex,
			IndexCount:    m.Draw.DrawCount,
			Skinned:       m.Skinning != nil,
		}
		if len(m.Draw.VertexBuffers) != 0 {
			vb := m.Draw.VertexBuffers[0]
			mv.VertexCount = vb.Count
			mv.VertexStride = vb.Declaration.VertexStride()
			for _, e := range vb.Declaration.Elements {
				mv.Elements = append(mv.Elements, e.SemanticAsText())
			}
		}
		view.Meshes = append(view.Meshes, mv)
	}
	for _, n := range result.Model.Skeleton.Nodes {
		view.Skeleton = append(view.Skeleton, nodeView{
			Name:        n.Name,
			ParentIndex: n.ParentIndex,
			Position:    n.Transform.Position,
			Rotation:    utils.QuatToEulerDegrees(n.Transform.Rotation),
			Scale:       n.Transform.Scale,
		})
	}
	webutils.WriteJson(w, view)
}

type computeView struct {
	Texture  string      `json:"texture,omitempty"`
	TexCoord int         `json:"texcoord,omitempty"`
	Color    *[4]float32 `json:"color,omitempty"`
	Value    *float32    `json:"value,omitempty"`
}

func newComputeView(n materials.ComputeNode) *computeView {
	switch v := n.(type) {
	case *materials.ComputeColor:
		c := [4]float32(v.Value)
		return &computeView{Color: &c}
	case *materials.ComputeFloat:
		f := v.Value
		return &computeView{Value: &f}
	case *materials.ComputeTextureColor:
		return &computeView{Texture: filepath.Base(v.TexturePath), TexCoord: int(v.TexCoord)}
	case *materials.ComputeTextureScalar:
		return &computeView{Texture: filepath.Base(v.TexturePath), TexCoord: int(v.TexCoord)}
	}
	return nil
}

func materialView(m *materials.MaterialAsset) map[string]interface{} {
	a := m.Attributes
	view := map[string]interface{}{"cull_back": a.CullMode == graphics.CullBack}
	if a.Diffuse != nil {
		view["diffuse"] = newComputeView(a.Diffuse.DiffuseMap)
	}
	if a.DiffuseModel != nil {
		view["diffuse_model"] = "lambert"
	}
	if a.MicroSurface != nil {
		view["glossiness"] = newComputeView(a.MicroSurface.GlossinessMap)
	}
	if a.Surface != nil {
		view["normal"] = newComputeView(a.Surface.NormalMap)
	}
	if a.Occlusion != nil {
		view["occlusion"] = newComputeView(a.Occlusion.OcclusionMap)
	}
	if a.Emissive != nil {
		view["emissive"] = newComputeView(a.Emissive.EmissiveMap)
	}
	return view
}

func HandlerAjaxAssetMaterials(w http.ResponseWriter, r *http.Request) {
	result, err := importAsset(mux.Vars(r)["file"])
	if err != nil {
		writeImportError(w, err)
		return
	}
	views := make(map[string]interface{}, len(result.Materials))
	for name, m := range result.Materials {
		views[name] = materialView(m)
	}
	webutils.WriteJson(w, views)
}

type curveView struct {
	Path          string `json:"path"`
	Interpolation string `json:"interpolation"`
	Keys          int    `json:"keys"`
}

type clipView struct {
	Name     string      `json:"name"`
	Duration float64     `json:"duration"`
	Curves   []curveView `json:"curves"`
}

func newClipView(name string, clip *animation.AnimationClip) clipView {
	view := clipView{Name: name, Duration: clip.Duration.Seconds()}
	for _, path := range clip.CurvePaths() {
		curve := clip.Curves[path]
		view.Curves = append(view.Curves, curveView{
			Path:          path,
			Interpolation: curve.Interpolation().String(),
			Keys:          curve.KeyCount(),
		})
	}
	return view
}

func HandlerAjaxAssetAnimations(w http.ResponseWriter, r *http.Request) {
	result, err := importAsset(mux.Vars(r)["file"])
	if err != nil {
		writeImportError(w, err)
		return
	}
	names := make([]string, 0, len(result.Animations))
	for name := range result.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	views := make([]clipView, len(names))
	for i, name := range names {
		views[i] = newClipView(name, result.Animations[name])
	}
	webutils.WriteJson(w, views)
}

func HandlerDumpAsset(w http.ResponseWriter, r *http.Request) {
	result, err := importAsset(mux.Vars(r)["file"])
	if err != nil {
		writeImportError(w, err)
		return
	}
	webutils.WriteText(w, utils.SDump(result.Model.Skeleton, result.EntityInfo, result.Report))
}

// HandlerDumpAssetBuffer downloads the raw vertex or index buffer of a primitive.
// With ?format=text the buffer is returned as a spew hexdump instead.
func HandlerDumpAssetBuffer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	file := vars["file"]
	prim, err := strconv.Atoi(vars["prim"])
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, fmt.Errorf("param '%s' is not integer", vars["prim"]))
		return
	}
	result, err := importAsset(file)
	if err != nil {
		writeImportError(w, err)
		return
	}
	if prim < 0 || prim >= len(result.Model.Meshes) {
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Wrapf(errNotFound, "primitive %d", prim))
		return
	}
	draw := result.Model.Meshes[prim].Draw

	var content []byte
	switch vars["buffer"] {
	case "vertex":
		content = draw.VertexBuffers[0].Buffer.Content
	case "index":
		content = draw.IndexBuffer.Buffer.Content
	default:
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Wrapf(errNotFound, "buffer %q", vars["buffer"]))
		return
	}

	if r.URL.Query().Get("format") == "text" {
		webutils.WriteText(w, utils.SDump(content))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(content), fmt.Sprintf("%s.%d.%s.bin", file, prim, vars["buffer"]))
}

const maxUploadSize = 256 << 20

func HandlerUploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	data, name, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}
	name = filepath.Base(name)
	path, err := assetPath(name)
	if err != nil {
		writeImportError(w, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Unable to save %q", name))
		return
	}
	logger.Info("[web] Uploaded asset", zap.String("file", name), zap.Int("size", len(data)))
	status.Info("Uploaded %s", name)
	webutils.WriteJson(w, map[string]string{"file": name})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[web] ws upgrade failed", zap.Error(err))
		return
	}
	status.NewClient(conn)
}
