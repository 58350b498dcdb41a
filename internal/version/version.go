// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package version reports the version of this module, as set by the linker
// or recorded in the build info.
package version

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

// version is the output of `git describe --tags --long` at build time. This is populated by the Go linker.
var version string

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Current version with the Git information.
func Current() Git {
	return parseGit(version)
}

// Parse returns the human readable version of the build.
func Parse() string {
	return Current().String()
}

// Scope returns the version used as the OpenTelemetry instrumentation scope
// version: the release tag when built by the release tooling, otherwise the
// module version from the build info, otherwise "dev".
func Scope() string {
	if tag := Current().ClosestTag; tag != "" {
		return tag
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// Git contains the version information extracted from a Git SHA.
type Git struct {
	ClosestTag   string
	CommitsAhead int
	Sha          string
}

func (g Git) String() string {
	switch {
	case g == Git{}:
		return "dev"
	case g.CommitsAhead != 0:
		return fmt.Sprintf("%s (%s, +%d)", g.Sha, g.ClosestTag, g.CommitsAhead)
	default:
		return g.ClosestTag
	}
}

// parseGit parses a version string of the format:
//
//	<release tag>-<commits since release tag>-g<commit hash>
//
// Release tags may themselves contain '-', so parsing starts from the end.
func parseGit(v string) Git {
	parts := strings.Split(v, "-")
	l := len(parts)
	if l < 3 || !strings.HasPrefix(parts[l-1], "g") {
		return Git{}
	}
	commits, err := strconv.Atoi(parts[l-2])
	if err != nil {
		return Git{}
	}
	return Git{
		ClosestTag:   strings.Join(parts[:l-2], "-"),
		CommitsAhead: commits,
		Sha:          strings.TrimPrefix(parts[l-1], "g"),
	}
}
