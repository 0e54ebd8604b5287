package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"romgen/parallel"
	"romgen/rom"
)

type cli struct {
	Debug   bool `help:"Enable debug logging" default:"false"`
	Workers int  `help:"Number of images processed at once; 0 means one per CPU" default:"1"`

	Gen  rom.GenCmd  `cmd:"" help:"Generate a VHDL lookup-table ROM from each image"`
	Info rom.InfoCmd `cmd:"" help:"Print image dimensions and ROM address widths"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("romgen"),
		kong.Description("Convert bitmap images into synthesizable VHDL ROMs of 12-bit colors."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	pool := parallel.Start(c.Workers)
	kctx.FatalIfErrorf(kctx.Run(pool))
}
