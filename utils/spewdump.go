package utils

import (
	"io"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/logger"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
}

func Dump(w io.Writer, a ...interface{}) {
	spewConfig.Fdump(w, a...)
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// LogDump writes the dump at debug level. Nothing is formatted when debug is off.
func LogDump(a ...interface{}) {
	if !logger.Log.Core().Enabled(zap.DebugLevel) {
		return
	}
	logger.Sugar.Debug(spewConfig.Sdump(a...))
}
