// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the freezethaw version reported by -version
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// DefaultConfigFile is read when -config is not given and the file exists
const DefaultConfigFile = "freezethaw.yaml"
