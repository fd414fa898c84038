package main

import (
	"context"
	"os"

	"photo-gallery/internal/uploader/cli"

	"github.com/charmbracelet/fang"
)

const version = "0.4.0"

func main() {
	root := cli.NewRootCmd(version)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
