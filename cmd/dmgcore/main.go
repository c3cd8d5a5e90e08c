package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	dmgcore "github.com/aarnes/dmgcore"
	"github.com/aarnes/dmgcore/input"
)

const (
	screenWidth  = 160
	screenHeight = 144

	// terminal characters are taller than wide, so the width is scaled more
	// to keep the picture roughly square.
	scaleX = 2
	scaleY = 1
)

// shadeChars renders darkest-to-lightest, matching the framebuffer's own
// shade convention (0=darkest).
var shadeChars = []rune{'█', '▓', '▒', '░'}

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "A Game Boy (DMG) core"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.StringFlag{Name: "bios", Usage: "Path to a 256-byte boot ROM (optional)"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a terminal display"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in headless mode", Value: 0},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	var bios []byte
	if biosPath := c.String("bios"); biosPath != "" {
		bios, err = os.ReadFile(biosPath)
		if err != nil {
			return fmt.Errorf("reading BIOS: %w", err)
		}
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames with a positive value")
		}
		return runHeadless(rom, bios, frames)
	}

	return runTerminal(rom, bios)
}

func runHeadless(rom, bios []byte, frames int) error {
	machine, err := dmgcore.NewMachine(rom, bios, nil)
	if err != nil {
		return err
	}

	for i := 0; i < frames; i++ {
		if _, err := machine.RunFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	slog.Info("ran headless", "frames", frames)
	return nil
}

func runTerminal(rom, bios []byte) error {
	renderer, err := newTerminalRenderer()
	if err != nil {
		return err
	}

	machine, err := dmgcore.NewMachine(rom, bios, nil)
	if err != nil {
		return err
	}
	renderer.machine = machine

	return renderer.run()
}

type terminalRenderer struct {
	screen  tcell.Screen
	machine *dmgcore.Machine
	running bool
}

func newTerminalRenderer() (*terminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	return &terminalRenderer{screen: screen, running: true}, nil
}

func (t *terminalRenderer) run() error {
	defer func() {
		slog.Info("finishing terminal")
		t.screen.Fini()
	}()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleInput()

	ticker := time.NewTicker(16600 * time.Microsecond)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for t.running {
		select {
		case <-ticker.C:
			if _, err := t.machine.RunFrame(); err != nil {
				return err
			}
			t.render()
			t.screen.Show()
		case <-signals:
			t.running = false
			slog.Info("received signal to stop")
			return nil
		}
	}

	return nil
}

var keyBindings = map[tcell.Key]input.Button{
	tcell.KeyRight: input.Right,
	tcell.KeyLeft:  input.Left,
	tcell.KeyUp:    input.Up,
	tcell.KeyDown:  input.Down,
}

var runeBindings = map[rune]input.Button{
	'z': input.A,
	'x': input.B,
	'a': input.Select,
	's': input.Start,
}

func (t *terminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				t.running = false
				return
			}
			if button, ok := keyBindings[ev.Key()]; ok {
				t.machine.SetButton(button, true)
				continue
			}
			if button, ok := runeBindings[ev.Rune()]; ok {
				t.machine.SetButton(button, true)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *terminalRenderer) render() {
	pixels := t.machine.FrameBuffer().Pixels()

	t.screen.Clear()
	for y := 0; y < screenHeight; y++ {
		for x := 0; x < screenWidth; x++ {
			shade := pixels[y*screenWidth+x]
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			char := shadeChars[shade]

			screenX := x * scaleX
			screenY := y * scaleY
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}
