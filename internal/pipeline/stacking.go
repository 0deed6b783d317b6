package pipeline

// Stacking is the per-file compositing variant, resolved once from the
// source format.
type Stacking int

const (
	// StackOpaque is used for formats without alpha (jpeg). The background
	// sits at the very bottom and is only exposed in the added border.
	StackOpaque Stacking = iota
	// StackAlphaBearing is used for formats with alpha (png). The background
	// sits directly below the content and shows through transparent pixels.
	StackAlphaBearing
)

func (s Stacking) String() string {
	switch s {
	case StackOpaque:
		return "opaque"
	case StackAlphaBearing:
		return "alpha"
	default:
		return "unknown"
	}
}

// ResolveStacking picks the variant for a source.
func ResolveStacking(hasNativeAlpha bool) Stacking {
	if hasNativeAlpha {
		return StackAlphaBearing
	}
	return StackOpaque
}

// Layer identifies one visual element of the composite.
type Layer int

const (
	LayerBackground Layer = iota
	LayerContent
)

func (l Layer) String() string {
	if l == LayerBackground {
		return "background"
	}
	return "content"
}

// Blend is how a layer is applied over what is already on the canvas.
type Blend int

const (
	// BlendCopy replaces canvas pixels with layer pixels.
	BlendCopy Blend = iota
	// BlendOver alpha-composites the layer over the canvas.
	BlendOver
)

// Region is the part of the canvas a layer covers.
type Region int

const (
	RegionFull Region = iota
	// RegionBorder is the canvas area outside the content footprint.
	RegionBorder
	// RegionFootprint is the content footprint itself.
	RegionFootprint
)

// LayerSpec is one entry of the stack.
type LayerSpec struct {
	Layer  Layer
	Region Region
	Blend  Blend
}

// Order returns the stack bottom to top. Both variants keep the background
// first; they differ in how much of the canvas it covers and how the
// content is applied over it.
func (s Stacking) Order() []LayerSpec {
	if s == StackAlphaBearing {
		return []LayerSpec{
			{Layer: LayerBackground, Region: RegionFull, Blend: BlendCopy},
			{Layer: LayerContent, Region: RegionFootprint, Blend: BlendOver},
		}
	}
	return []LayerSpec{
		{Layer: LayerBackground, Region: RegionBorder, Blend: BlendCopy},
		{Layer: LayerContent, Region: RegionFootprint, Blend: BlendCopy},
	}
}
