package web

import (
	"net/http"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/importer/gltfimport"
	"github.com/mogaika/gltf_importer/logger"
)

var AssetDirectory string
var ImportOptions = gltfimport.DefaultOptions()

func NewRouter(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/assets", HandlerAjaxAssets)
	r.HandleFunc("/json/asset/{file}", HandlerAjaxAsset)
	r.HandleFunc("/json/asset/{file}/materials", HandlerAjaxAssetMaterials)
	r.HandleFunc("/json/asset/{file}/animations", HandlerAjaxAssetAnimations)
	r.HandleFunc("/dump/asset/{file}", HandlerDumpAsset)
	r.HandleFunc("/dump/asset/{file}/{prim}/{buffer}", HandlerDumpAssetBuffer)
	r.HandleFunc("/upload/asset", HandlerUploadAsset).Methods("POST")
	r.HandleFunc("/status", HandlerStatus)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func StartServer(addr string, assetDir string, webPath string, opts gltfimport.Options) error {
	AssetDirectory = assetDir
	ImportOptions = opts

	r := NewRouter(webPath)
	h := handlers.RecoveryHandler()(r)
	h = handlers.CombinedLoggingHandler(zap.NewStdLog(logger.Log).Writer(), h)

	logger.Info("[web] Starting server", zap.String("addr", addr), zap.String("assets", assetDir))

	return http.ListenAndServe(addr, h)
}
