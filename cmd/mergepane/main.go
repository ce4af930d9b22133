package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/chojs23/mergepane/internal/cli"
	"github.com/chojs23/mergepane/internal/run"
)

var version = "dev"

func main() {
	ctx := context.Background()
	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			fmt.Fprintln(os.Stdout, cli.Usage())
			os.Exit(0)
		}
		if errors.Is(err, cli.ErrVersion) {
			fmt.Fprintf(os.Stdout, "mergepane %s\n", versionString())
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	os.Exit(run.Run(ctx, opts))
}

// versionString prefers the linker-set version, then the module version,
// then the VCS revision recorded by the go command.
func versionString() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	return buildVersion(info)
}

func buildVersion(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return version + "-" + s.Value[:7]
		}
	}
	return version
}
