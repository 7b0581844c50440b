// Command gpathdemo renders a test scene with the gpath stencil-then-cover
// pipeline and writes it to an image file.
//
// Usage:
//
//	gpathdemo [-backend auto|soft|wgpu] [-width 800] [-height 600]
//	          [-output demo.png] [-format png|bmp|tiff] [-tolerance 0.1]
//	          [-gpu-splines] [-v]
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/backend"
	_ "github.com/gogpu/gpath/backend/soft"
	"github.com/gogpu/gpath/render"
	"github.com/gogpu/gpath/surface"
)

func main() {
	var (
		backendName = flag.String("backend", "auto", "device backend: auto, soft or wgpu")
		width       = flag.Int("width", 800, "image width")
		height      = flag.Int("height", 600, "image height")
		output      = flag.String("output", "demo.png", "output file")
		format      = flag.String("format", "", "image format: png, bmp or tiff (default from the output extension)")
		tolerance   = flag.Float64("tolerance", gpath.DefaultTolerance, "curve flattening tolerance in pixels")
		gpuSplines  = flag.Bool("gpu-splines", false, "fill cubics with the Loop-Blinn fragment program")
		verbose     = flag.Bool("v", false, "log pipeline diagnostics")
	)
	flag.Parse()

	if *verbose {
		gpath.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	f := *format
	if f == "" {
		f = strings.TrimPrefix(filepath.Ext(*output), ".")
	}
	enc, err := encoder(f)
	if err != nil {
		log.Fatal(err)
	}

	cfg := gpath.NewConfig(
		gpath.WithTolerance(*tolerance),
		gpath.WithGPUSplineFill(*gpuSplines),
	)
	img, name, err := renderScene(*backendName, *width, *height, cfg)
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	out, err := os.Create(*output)
	if err != nil {
		log.Fatal(err)
	}
	if err := enc(out, img); err != nil {
		_ = out.Close()
		log.Fatalf("encode %s: %v", *output, err)
	}
	if err := out.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Demo saved to %s (%dx%d, %s backend)", *output, *width, *height, name)
}

// encoder returns the image encoder for a format name.
func encoder(format string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode, nil
	case "bmp":
		return bmp.Encode, nil
	case "tif", "tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("unknown image format %q", format)
	}
}

// openDevice opens the named backend, or the best available one for
// "auto".
func openDevice(name string, w, h int) (render.Device, string, error) {
	if name == "auto" {
		return backend.Default(w, h)
	}
	dev, err := backend.Open(name, w, h)
	return dev, name, err
}

// renderScene draws the demo scene on a new device and returns the pixels.
func renderScene(backendName string, w, h int, cfg gpath.Config) (*image.RGBA, string, error) {
	dev, name, err := openDevice(backendName, w, h)
	if err != nil {
		return nil, "", err
	}
	if r, ok := dev.(interface{ Release() }); ok {
		defer r.Release()
	}

	res, err := render.NewResources(dev, cfg)
	if err != nil {
		return nil, "", err
	}
	s, err := surface.New(res)
	res.Release()
	if err != nil {
		return nil, "", err
	}
	defer s.Close()

	if err := drawScene(s, cfg.Tolerance); err != nil {
		return nil, "", err
	}
	if err := s.Flush(); err != nil {
		return nil, "", err
	}

	pm, ok := dev.Target().(*render.PixmapTarget)
	if !ok {
		return nil, "", errors.New("device target is not a pixmap")
	}
	return pm.Image(), name, nil
}
