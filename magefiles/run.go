//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed in debug mode with the given configuration file.
func (Run) Debug(config string) error {
	fmt.Println("Run engine (debug)...")
	if _, err := executeCmd("go", withArgs("run", "-tags", "debug", ".", "-config", config), withStream()); err != nil {
		return err
	}
	return nil
}
