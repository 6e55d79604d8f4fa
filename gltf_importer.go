package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/config"
	"github.com/mogaika/gltf_importer/importer/gltfimport"
	"github.com/mogaika/gltf_importer/logger"
	"github.com/mogaika/gltf_importer/web"
)

func main() {
	var configPath, addr, dir, webPath string
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.StringVar(&dir, "dir", "", "Directory with .gltf/.glb assets, overrides config")
	flag.StringVar(&webPath, "web", "", "Path to web frontend, overrides config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dir != "" {
		cfg.Server.AssetDir = dir
	}
	if webPath != "" {
		cfg.Server.WebPath = webPath
	}
	if cfg.Server.AssetDir == "" {
		flag.PrintDefaults()
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := web.StartServer(cfg.Server.Addr, cfg.Server.AssetDir, cfg.Server.WebPath,
		gltfimport.OptionsFromConfig(cfg.Importer)); err != nil {
		logger.Log.Fatal("Server stopped", zap.Error(err))
	}
}
