//go:build tinygo || !cgo

package sdfaux

import "errors"

func ui(cfg ViewConfig) error {
	return errors.New("require cgo for UI rendering")
}
