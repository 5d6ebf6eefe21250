//go:build mage
// +build mage

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

func BuildHuectl(ctx context.Context) error {
	fmt.Println("Building huectl...")
	return sh.RunV("go", "build", "-o", binaryName("HUECTL_BINARY", "huectl"), "./cmd/huectl")
}

func BuildFakeBridge(ctx context.Context) error {
	fmt.Println("Building fakebridge...")
	return sh.RunV("go", "build", "-o", binaryName("FAKEBRIDGE_BINARY", "fakebridge"), "./cmd/fakebridge")
}

func Build(ctx context.Context) error {
	fmt.Println("Building...")
	mg.CtxDeps(ctx, BuildFakeBridge, BuildHuectl)
	return nil
}

func Test(ctx context.Context) error {
	fmt.Println("Testing...")
	return sh.RunV("go", "test", "./...")
}

func Release() (err error) {
	if os.Getenv("TAG") == "" {
		return errors.New("TAG environment variable is required")
	}
	if err := sh.RunV("git", "tag", "-a", "$TAG"); err != nil {
		return err
	}
	if err := sh.RunV("git", "push", "origin", "$TAG"); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			sh.RunV("git", "tag", "--delete", "$TAG")
			sh.RunV("git", "push", "--delete", "origin", "$TAG")
		}
	}()
	return sh.RunV("goreleaser")
}

func binaryName(key, defaultValue string) string {
	output := os.Getenv(key)
	if output == "" {
		output = defaultValue
	}
	if runtime.GOOS == "windows" {
		output += ".exe"
	}
	return output
}
