// Package gpath is a GPU tessellation engine for 2D vector paths.
//
// # Overview
//
// gpath turns filled and stroked paths into triangle meshes for a hardware
// rasterizer. Fills are drawn with the stencil-then-cover technique: a fan
// of triangles anchored at each contour start accumulates winding or parity
// in the stencil buffer, then a single quad over the path bounds is shaded
// wherever the stencil is non-zero. Strokes are built by convolving a convex
// pen polygon along the path.
//
// Cubic curves are either flattened into line segments or, when the device
// has fragment programs and GPU spline fill is enabled, classified into
// serpentine, cusp, loop and quadratic cases and filled exactly per pixel
// with an implicit curve test.
//
// # Quick Start
//
//	dev := soft.New(render.NewPixmapTarget(256, 256))
//	res, err := render.NewResources(dev, gpath.NewConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := surface.New(res)
//	res.Release()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	p := gpath.NewPath()
//	p.Circle(128, 128, 100)
//	err = s.Fill(gpath.OperatorOver, gpath.Solid(gpath.RGB(1, 0, 0)), p,
//	    gpath.FillRuleNonZero, 0.1)
//
// # Architecture
//
// The module is organized into:
//   - gpath: geometry (Vec2, Matrix, Cubic), paths, paints, configuration
//   - internal/mesh: fixed-capacity vertex/index batches with overflow flush
//   - internal/splines: deferred cubic storage
//   - internal/curve: cubic classification and implicit coefficients
//   - internal/fill, internal/stroke: tessellators
//   - internal/source: paint to shader-state derivation, color ramps
//   - internal/cache: the LRU cache behind gradient ramp reuse
//   - render: the abstract GPU device and shared resources
//   - surface: fill, stroke, paint and clip on a device
//   - backend/soft, backend/wgpu: device implementations
//   - integration/geompath: seehuhn.de/go/geom paths as path sources
//
// # Logging
//
// gpath is silent by default. Use SetLogger to route diagnostics to a
// log/slog logger.
package gpath
