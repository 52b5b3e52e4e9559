package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/objex-tools/animutil/cli"
	"github.com/objex-tools/animutil/logs"
)

func main() {
	defer logs.Sync()
	if err := cli.NewWrapper().Run(os.Args); err != nil {
		logs.Fatal("animutil failed", zap.Error(err))
	}
}
