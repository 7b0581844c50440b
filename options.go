package gpath

// Defaults sized to the hardware vertex and index buffers.
const (
	// DefaultMaxTriangles is the number of triangles one mesh batch holds.
	DefaultMaxTriangles = 2048

	// DefaultMeshCapacity is the vertex and index capacity of one batch.
	DefaultMeshCapacity = DefaultMaxTriangles * 3

	// DefaultRampWidth is the number of texels in a gradient color ramp.
	DefaultRampWidth = 1024

	// DefaultRampCache is the number of gradient ramps kept for reuse.
	DefaultRampCache = 32

	// DefaultTolerance is the flattening tolerance in device pixels.
	DefaultTolerance = 0.1
)

// Config holds tessellation and device configuration.
// Construct it with NewConfig and functional options.
type Config struct {
	// Tolerance is the maximum distance, in device pixels, between a curve
	// and its flattened approximation.
	Tolerance float64

	// GPUSplineFill evaluates cubic curves in a fragment program instead of
	// flattening them. It only takes effect when the device supports
	// fragment programs.
	GPUSplineFill bool

	// FragmentPrograms allows the use of fragment programs at all. When
	// false, radial gradients and spline fill are unavailable.
	FragmentPrograms bool

	// MeshCapacity is the vertex and index capacity of a mesh batch. It must
	// be a positive multiple of 3 and at most 65535.
	MeshCapacity int

	// SplineBudget caps the number of cubics deferred per fill. Zero means
	// unlimited.
	SplineBudget int

	// RampWidth is the width of gradient color ramps.
	RampWidth int

	// RampCache is the number of computed gradient ramps kept for reuse.
	// Zero disables the cache.
	RampCache int
}

// Option configures a Config.
//
// Example:
//
//	cfg := gpath.NewConfig(
//	    gpath.WithTolerance(0.25),
//	    gpath.WithGPUSplineFill(true),
//	)
type Option func(*Config)

// NewConfig returns the default configuration with opts applied.
// GPU spline fill is disabled by default; curves are flattened.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		Tolerance:        DefaultTolerance,
		FragmentPrograms: true,
		MeshCapacity:     DefaultMeshCapacity,
		RampWidth:        DefaultRampWidth,
		RampCache:        DefaultRampCache,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTolerance sets the flattening tolerance. Non-positive values are
// ignored.
func WithTolerance(tol float64) Option {
	return func(c *Config) {
		if tol > 0 {
			c.Tolerance = tol
		}
	}
}

// WithGPUSplineFill enables or disables fragment-program curve filling.
func WithGPUSplineFill(enabled bool) Option {
	return func(c *Config) {
		c.GPUSplineFill = enabled
	}
}

// WithFragmentPrograms allows or forbids fragment programs.
func WithFragmentPrograms(enabled bool) Option {
	return func(c *Config) {
		c.FragmentPrograms = enabled
	}
}

// WithMeshCapacity sets the batch capacity. The value is rounded down to a
// multiple of 3 and clamped to [3, 65535].
func WithMeshCapacity(n int) Option {
	return func(c *Config) {
		n = min(max(n, 3), 65535)
		c.MeshCapacity = n - n%3
	}
}

// WithSplineBudget caps the number of deferred cubics per fill.
func WithSplineBudget(n int) Option {
	return func(c *Config) {
		c.SplineBudget = max(n, 0)
	}
}

// WithRampWidth sets the gradient ramp width. Values below 2 are ignored.
func WithRampWidth(w int) Option {
	return func(c *Config) {
		if w >= 2 {
			c.RampWidth = w
		}
	}
}

// WithRampCache sets the number of gradient ramps kept for reuse. Zero
// disables the cache.
func WithRampCache(n int) Option {
	return func(c *Config) {
		c.RampCache = max(n, 0)
	}
}
