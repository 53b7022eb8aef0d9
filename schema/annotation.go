package schema

// Annotation is arbitrary metadata attached to a type or to one of its
// elements. Annotations travel with the descriptor but never participate in
// structural identity; formats and tooling interpret the ones they know.
type Annotation any

// FindAnnotation returns the first annotation of type A, searching in push
// order.
func FindAnnotation[A any](annotations []Annotation) (A, bool) {
	for _, a := range annotations {
		if v, ok := a.(A); ok {
			return v, true
		}
	}
	var zero A
	return zero, false
}
