// Package backend provides a registry of render.Device implementations.
//
// Backends register a Factory under a name from their init() functions and
// are selected at runtime:
//
//	import _ "github.com/gogpu/gpath/backend/soft"
//
//	// The best available backend
//	dev, name, err := backend.Default(800, 600)
//
//	// Or a specific one
//	dev, err := backend.Open(backend.BackendSoft, 800, 600)
//
// # Available Backends
//
//   - "soft": software reference device rendering into *image.RGBA
//     (always available)
//   - "wgpu": GPU device over gogpu/wgpu (requires a GPU; excluded with
//     the nogpu build tag)
package backend
