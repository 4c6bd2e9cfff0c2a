package app

import "fmt"

// Stamped by the release build:
//
//	-ldflags "-X github.com/heartmarshall/reviewengine/internal/app.Version=v1.4.0 -X ...Commit=abc123"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// BuildVersion is Version, followed by the commit and build time when stamped.
func BuildVersion() string {
	v := Version
	if Commit != "" {
		v += "+" + Commit
	}
	if BuildTime != "" {
		v = fmt.Sprintf("%s (%s)", v, BuildTime)
	}
	return v
}
