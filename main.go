package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/DonAyers/pixegen/convert"
	"github.com/DonAyers/pixegen/parallel"
)

var cli struct {
	Convert convert.CLICmd `cmd:"" help:"Convert images in a folder to palette-quantized sprites"`

	Jobs int `help:"Number of parallel workers, 0 for one per CPU" short:"j" default:"0"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("pixegen"),
		kong.Description("Converts raster images into retro-console pixel art sprites"),
		kong.UsageOnError(),
	)

	pool := parallel.Start(cli.Jobs)
	if err := kctx.Run(parallel.WorkerFunc(pool.Do), parallel.WaitFunc(pool.Wait)); err != nil {
		slog.Error("failed", "error", err)
		os.Exit(1)
	}
}
