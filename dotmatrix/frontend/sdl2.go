//go:build sdl2

package frontend

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/cpu"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

const pixelScale = 4

// SDL2Renderer draws frames into an SDL window and feeds key up/down events
// back as button state.
// Note: building this requires the SDL2 development libraries; default
// builds use the stub instead, see build tags (sdl2).
type SDL2Renderer struct {
	dmg      *dotmatrix.DMG
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool

	pixels []byte
}

// NewSDL2Renderer creates a window sized to the LCD times pixelScale.
func NewSDL2Renderer(dmg *dotmatrix.DMG) (*SDL2Renderer, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		"dotmatrix",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*pixelScale,
		video.FramebufferHeight*pixelScale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %v", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %v", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture: %v", err)
	}

	return &SDL2Renderer{
		dmg:      dmg,
		window:   window,
		renderer: renderer,
		texture:  texture,
		running:  true,
		pixels:   make([]byte, video.FramebufferWidth*video.FramebufferHeight*4),
	}, nil
}

// Run drives the emulator at 60 frames per second until the window closes.
func (s *SDL2Renderer) Run() error {
	defer s.cleanup()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for s.running {
		<-ticker.C

		s.pollEvents()
		s.dmg.RunFrame()
		if err := s.present(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SDL2Renderer) cleanup() {
	slog.Info("Shutting down SDL2")
	s.texture.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
	sdl.Quit()
}

func (s *SDL2Renderer) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			s.running = false
		case *sdl.KeyboardEvent:
			button, ok := buttonForKey(ev.Keysym.Sym)
			if !ok {
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					s.running = false
				}
				continue
			}
			if ev.Type == sdl.KEYDOWN {
				s.dmg.ButtonOn(button)
			} else {
				s.dmg.ButtonOff(button)
			}
		}
	}
}

func buttonForKey(key sdl.Keycode) (cpu.Button, bool) {
	switch key {
	case sdl.K_UP:
		return cpu.ButtonUp, true
	case sdl.K_DOWN:
		return cpu.ButtonDown, true
	case sdl.K_LEFT:
		return cpu.ButtonLeft, true
	case sdl.K_RIGHT:
		return cpu.ButtonRight, true
	case sdl.K_a:
		return cpu.ButtonA, true
	case sdl.K_s:
		return cpu.ButtonB, true
	case sdl.K_RETURN:
		return cpu.ButtonStart, true
	case sdl.K_q:
		return cpu.ButtonSelect, true
	}
	return 0, false
}

func (s *SDL2Renderer) present() error {
	frame := s.dmg.Framebuffer().ToSlice()
	for i, shade := range frame {
		s.pixels[i*4] = shade   // B
		s.pixels[i*4+1] = shade // G
		s.pixels[i*4+2] = shade // R
		s.pixels[i*4+3] = 0xFF  // A
	}

	if err := s.texture.Update(nil, s.pixels, video.FramebufferWidth*4); err != nil {
		return err
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return err
	}
	s.renderer.Present()

	return nil
}
