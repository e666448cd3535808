//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs every package test with the race detector, debug build included.
func (Test) Race() error {
	mg.Deps(Test.Unit)
	_, err := executeCmd("go", withArgs("test", "-race", "-tags", "debug", "./..."), withStream())
	return err
}
