package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/frontend"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A DMG (original Game Boy) emulator"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Renderer to use: terminal or sdl2",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display, tapping the serial port",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "serial-log",
			Usage: "File to write the serial port output to (headless mode)",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	dmg, err := dotmatrix.NewWithFile(romPath)
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))

		slog.Info("Running headless", "frames", frames)
		runner := frontend.NewHeadless(dmg)
		runner.Run(frames)

		if out := runner.SerialOutput(); out != "" {
			slog.Info("Serial output", "text", out)
		}

		if path := c.String("serial-log"); path != "" {
			if err := os.WriteFile(path, []byte(runner.SerialOutput()), 0644); err != nil {
				return fmt.Errorf("failed to write serial log: %v", err)
			}
			slog.Info("Wrote serial log", "path", path)
		}
		return nil
	}

	switch c.String("backend") {
	case "sdl2":
		renderer, err := frontend.NewSDL2Renderer(dmg)
		if err != nil {
			return err
		}
		return renderer.Run()
	default:
		renderer, err := frontend.NewTerminalRenderer(dmg)
		if err != nil {
			return err
		}
		return renderer.Run()
	}
}
