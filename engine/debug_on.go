//go:build debug

package engine

const buildDebug = true
