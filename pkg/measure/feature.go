package measure

// FeatureKey identifies the layout measurement feature.
const FeatureKey = "measure-layout"

// Props is the part of an element's animation configuration that decides
// whether layout measurement is needed.
type Props struct {
	// Drag enables gesture-driven positioning.
	Drag bool
	// Layout animates the element between layout changes.
	Layout bool
	// LayoutID links the element to others sharing the same id across renders.
	LayoutID string
}

// Feature describes layout measurement to a host that composes features.
type Feature struct {
	Key string
}

// MeasureLayout is the layout measurement feature descriptor.
var MeasureLayout = Feature{Key: FeatureKey}

// ShouldActivate reports whether props request drag-based, layout-based or
// identity-based positioning.
func (Feature) ShouldActivate(props Props) bool {
	return props.Drag || props.Layout || props.LayoutID != ""
}

// Instantiate binds a fresh scheduler to element and returns it as a
// Controller.
func Instantiate[E Handle](element E, target SyncTarget[E], order *OrderConfig, opts ...Option) Controller {
	return New(element, target, order, opts...)
}

// Bind instantiates a controller only when props activate the feature.
func Bind[E Handle](props Props, element E, target SyncTarget[E], order *OrderConfig, opts ...Option) (Controller, bool) {
	if !MeasureLayout.ShouldActivate(props) {
		return nil, false
	}
	return Instantiate(element, target, order, opts...), true
}
