package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yami-cli/yami/pkg/cmd"
)

// NB: These are set by GoReleaser during a build.
var (
	version = "dev"
	commit  string
	date    string
)

func main() {
	// A .env next to the invocation may supply MILVUS_URI and friends;
	// absence is fine.
	_ = godotenv.Load()

	v := version
	if commit != "" {
		v = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}

	os.Exit(cmd.Run(context.Background(), cmd.Options{Version: v}, os.Args))
}
