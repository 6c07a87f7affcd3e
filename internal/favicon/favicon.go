// Package favicon loads and validates the 64x64 server-icon PNG embedded
// in the status response. png.DecodeConfig reads just the header, which is
// all the dimension check needs.
package favicon

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"

	"github.com/wardenproxy/warden/internal/logz"
)

const (
	requiredWidth  = 64
	requiredHeight = 64
)

// Load reads path and returns a ready-to-embed "data:image/png;base64,..."
// URI. A missing file or one that fails validation yields an empty string,
// never an error: status must still be served without a favicon.
func Load(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logz.Warn("favicon: reading %s: %v", path, err)
		}
		return ""
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logz.Warn("favicon: %s is not a valid PNG: %v", path, err)
		return ""
	}
	if cfg.Width != requiredWidth || cfg.Height != requiredHeight {
		logz.Warn("favicon: %s is %dx%d, want %dx%d", path, cfg.Width, cfg.Height, requiredWidth, requiredHeight)
		return ""
	}

	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(data))
}
