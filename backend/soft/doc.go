// Package soft implements render.Device in software.
//
// The device is the reference for the GPU backends: it rasterizes
// triangles with the top-left fill convention on a 1/256 subpixel grid,
// keeps an 8-bit stencil and a float32 depth buffer with the full
// stencil/depth state of render.State, and emulates the radial gradient
// and cubic fill programs on the CPU. Output goes to an *image.RGBA
// through render.PixmapTarget; with source-over blending the stored
// pixels are premultiplied, matching image.RGBA.
//
// Importing the package registers it with the backend registry under
// backend.BackendSoft:
//
//	import _ "github.com/gogpu/gpath/backend/soft"
package soft
