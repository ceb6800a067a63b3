//go:build tools
// +build tools

// Package tools pins command line tools used by the build but never imported
// by application code.
//
// See: https://github.com/golang/go/wiki/Modules#how-can-i-track-tool-dependencies-for-a-module
package tools

import (
	// swag regenerates docs/docs.go from the handler annotations
	_ "github.com/swaggo/swag/cmd/swag"
)
