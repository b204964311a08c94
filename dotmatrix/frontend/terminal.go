package frontend

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/cpu"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

const (
	scaleX    = 2
	frameTime = time.Second / 60

	// terminals deliver no key-up events, so a pressed button is released
	// after this many frames
	releaseFrames = 6
)

// shadeChar maps a published shade byte to a block character.
func shadeChar(shade byte) rune {
	switch shade {
	case 0x00:
		return '█'
	case 0x85:
		return '▓'
	case 0xAA:
		return '▒'
	default:
		return '░'
	}
}

// TerminalRenderer draws frames into the terminal with tcell and feeds
// keyboard input back as button events.
type TerminalRenderer struct {
	screen  tcell.Screen
	dmg     *dotmatrix.DMG
	running bool

	pressed map[cpu.Button]int
}

// NewTerminalRenderer initializes a tcell screen over the given system.
func NewTerminalRenderer(dmg *dotmatrix.DMG) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &TerminalRenderer{
		screen:  screen,
		dmg:     dmg,
		running: true,
		pressed: make(map[cpu.Button]int),
	}, nil
}

// Run drives the emulator at 60 frames per second until interrupted or ESC
// is pressed.
func (t *TerminalRenderer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		t.screen.Fini()
	}()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for t.running {
		select {
		case <-ticker.C:
			t.dmg.RunFrame()
			t.releaseButtons()
			t.render()
			t.screen.Show()
		case <-signals:
			t.running = false
			slog.Info("Received signal to stop")
			return nil
		}
	}

	return nil
}

func (t *TerminalRenderer) press(b cpu.Button) {
	t.dmg.ButtonOn(b)
	t.pressed[b] = releaseFrames
}

func (t *TerminalRenderer) releaseButtons() {
	for b, frames := range t.pressed {
		frames--
		if frames <= 0 {
			t.dmg.ButtonOff(b)
			delete(t.pressed, b)
			continue
		}
		t.pressed[b] = frames
	}
}

func (t *TerminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape:
				t.running = false
			case tcell.KeyEnter:
				t.press(cpu.ButtonStart)
			case tcell.KeyRight:
				t.press(cpu.ButtonRight)
			case tcell.KeyLeft:
				t.press(cpu.ButtonLeft)
			case tcell.KeyUp:
				t.press(cpu.ButtonUp)
			case tcell.KeyDown:
				t.press(cpu.ButtonDown)
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'a':
					t.press(cpu.ButtonA)
				case 's':
					t.press(cpu.ButtonB)
				case 'q':
					t.press(cpu.ButtonSelect)
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *TerminalRenderer) render() {
	frame := t.dmg.Framebuffer().ToSlice()

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			char := shadeChar(frame[y*video.FramebufferWidth+x])
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(x*scaleX+sx, y, char, nil, style)
			}
		}
	}
}
