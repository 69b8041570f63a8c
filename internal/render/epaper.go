package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"

	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/mode"
)

// EPaper drives the Waveshare 2.13" V4 hat over SPI. The panel is woken
// for each frame and put back into deep sleep right after, so it draws
// nothing between refreshes. Grid geometry is derived from the panel
// bounds and the font metrics.
type EPaper struct {
	port    spi.PortCloser
	display *waveshare2in13v4.Dev
	face    *basicfont.Face
	vis     *Visualizer
	marginX int
	marginY int
	asleep  bool
}

// NewEPaper opens the default SPI port and initializes the hat. The
// caller must have run host.Init first.
func NewEPaper() (*EPaper, error) {
	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open spi port: %w", err)
	}
	opts := waveshare2in13v4.EPD2in13v4
	display, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("open e-paper hat: %w", err)
	}
	if err := display.Init(); err != nil {
		port.Close()
		return nil, fmt.Errorf("init e-paper: %w", err)
	}
	if err := display.Clear(color.White); err != nil {
		port.Close()
		return nil, fmt.Errorf("clear e-paper: %w", err)
	}

	e := &EPaper{port: port, display: display, face: basicfont.Face7x13}
	bounds := display.Bounds()
	cols := bounds.Dx() / e.face.Advance
	rows := bounds.Dy() / e.face.Height
	e.vis = NewVisualizer(cols, rows)
	e.marginX = (bounds.Dx() - cols*e.face.Advance) / 2
	e.marginY = (bounds.Dy() - rows*e.face.Height) / 2
	e.sleep()
	return e, nil
}

// Render wakes the panel, pushes a full frame for the given mode and
// puts the panel back to sleep.
func (e *EPaper) Render(tp clock.TimePoint, m mode.Mode, p clock.YearProgress) error {
	grid, err := e.vis.Render(m, p)
	if err != nil {
		return err
	}
	if err := e.wake(); err != nil {
		return err
	}
	img := image1bit.NewVerticalLSB(e.display.Bounds())
	draw.Draw(img, img.Bounds(), e.rasterize(grid), image.Point{}, draw.Src)
	if err := e.display.Draw(e.display.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	log.Printf("display: %s frame for %s, day %d of %d", m, tp.Time().Format("2006-01-02"), p.DaysElapsed, p.DaysTotal)
	e.sleep()
	return nil
}

// Close powers the panel down and releases the SPI port.
func (e *EPaper) Close() error {
	if err := e.wake(); err != nil {
		log.Printf("e-paper close: %v", err)
	} else if err := e.display.Halt(); err != nil {
		log.Printf("e-paper halt: %v", err)
	}
	return e.port.Close()
}

func (e *EPaper) wake() error {
	if !e.asleep {
		return nil
	}
	if err := e.display.Init(); err != nil {
		return fmt.Errorf("wake e-paper: %w", err)
	}
	e.asleep = false
	return nil
}

func (e *EPaper) sleep() {
	if e.asleep {
		return
	}
	if err := e.display.Sleep(); err != nil {
		log.Printf("e-paper sleep: %v", err)
		return
	}
	e.asleep = true
}

// rasterize paints the character grid black on white at the panel's
// native resolution.
func (e *EPaper) rasterize(grid string) *image.Gray {
	bounds := e.display.Bounds()
	img := image.NewGray(bounds)
	draw.Draw(img, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: e.face,
	}
	for i, line := range strings.Split(grid, "\n") {
		d.Dot = fixed.P(e.marginX, e.marginY+e.face.Ascent+i*e.face.Height)
		d.DrawString(line)
	}
	return img
}
