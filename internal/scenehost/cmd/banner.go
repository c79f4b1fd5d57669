package cmd

import (
	"fmt"
	"runtime"
)

const bannerText = `
  ___                  _    _ _
 / __| __ ___ _ _  ___| |__(_) |_
 \__ \/ _/ -_) ' \/ -_) / /| |  _|
 |___/\__\___|_||_\___|_\_\|_|\__|

      Scene plugin host
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Go: %s %s/%s\n", bannerText, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
