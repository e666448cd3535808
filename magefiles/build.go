//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/fyrebird", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the testbed binary with the validation layer and debug utilities
// enabled.
func (Build) Debug() error {
	if _, err := executeCmd("go", withArgs("build", "-tags", "debug", "-o", "bin/fyrebird-debug", "."), withStream()); err != nil {
		return err
	}
	return nil
}
