package formats

import (
	"fmt"
	"maps"
	"slices"

	"hydrodeck/internal/registry"
)

// Options tune the binary registry detection.
type Options struct {
	Stride   int
	PostoMin int32
	PostoMax int32
}

func DefaultOptions() Options {
	return Options{Stride: HidrStride, PostoMin: 1, PostoMax: 999}
}

// WithDefaults fills unset fields from DefaultOptions, each on its own:
// PostoMin 5 alone becomes the range [5, 999].
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Stride == 0 {
		o.Stride = d.Stride
	}
	if o.PostoMin == 0 {
		o.PostoMin = d.PostoMin
	}
	if o.PostoMax == 0 {
		o.PostoMax = d.PostoMax
	}
	return o
}

// Validate checks the options after defaulting.
func (o Options) Validate() error {
	o = o.WithDefaults()
	if o.Stride < 0 {
		return fmt.Errorf("stride must not be negative")
	}
	if minStride := HidrMinStride(); o.Stride < minStride {
		return fmt.Errorf("stride %d is shorter than the %d bytes of a hidr record", o.Stride, minStride)
	}
	if o.PostoMin < 0 || o.PostoMax < 0 {
		return fmt.Errorf("posto range must not be negative")
	}
	if o.PostoMin > o.PostoMax {
		return fmt.Errorf("posto_min %d exceeds posto_max %d", o.PostoMin, o.PostoMax)
	}
	return nil
}

// Register adds every supported format to r. The binary registry is
// registered with Detect so the text variant only serves as a fallback.
func Register(r *registry.Registry, opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("formats: %w", err)
	}
	opts = opts.WithDefaults()
	hidr := NewHidrBinary(HidrLayout(opts.Stride, opts.PostoMin, opts.PostoMax))

	entries := []registry.Entry{
		{Name: NameEntdados, Pattern: "entdados*.dat", Format: registry.FormatText, Parse: ParseEntdados},
		{Name: NameOperuh, Pattern: "operuh*.dat", Format: registry.FormatBlock, Parse: ParseOperuh},
		{Name: NameDadvaz, Pattern: "dadvaz*.dat", Format: registry.FormatText, Parse: ParseDadvaz},
		{Name: NameHidr, Pattern: "hidr*.dat", Format: registry.FormatBinary, Parse: hidr.Parse, Detect: hidr.Detect},
		{Name: NameHidrText, Pattern: "hidr*.dat", Format: registry.FormatText, Parse: ParseHidrText},
	}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a frozen registry with every supported format.
func NewRegistry(opts Options, aliases map[string]string) (*registry.Registry, error) {
	r := registry.New()
	if err := Register(r, opts); err != nil {
		return nil, err
	}
	for _, pattern := range slices.Sorted(maps.Keys(aliases)) {
		if err := r.Alias(pattern, aliases[pattern]); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}
