package reconcile

// Comparator decides when two cells hold the same value. Token must agree
// with Equal: two values are equal exactly when their tokens are equal.
// Tokens are also used to build index keys, so a comparator defines which
// rows align as well as which fields differ.
type Comparator interface {
	// Name identifies the comparator in run metadata.
	Name() string

	// Token returns the comparison token of v, or nil for null.
	Token(v Value) *string

	// Equal reports whether a and b are considered the same value.
	Equal(a, b Value) bool
}

// LooseComparator compares canonical strings, so 1, 1.0 and "1" are equal.
// Null equals null.
type LooseComparator struct{}

func (LooseComparator) Name() string { return "loose" }

func (LooseComparator) Token(v Value) *string { return Stringify(v) }

func (LooseComparator) Equal(a, b Value) bool {
	return sameText(Stringify(a), Stringify(b))
}

// StrictComparator also requires both values to have the same Kind.
type StrictComparator struct{}

func (StrictComparator) Name() string { return "strict" }

func (StrictComparator) Token(v Value) *string {
	s := Stringify(v)
	if s == nil {
		return nil
	}
	token := v.Kind().String() + ":" + *s
	return &token
}

func (c StrictComparator) Equal(a, b Value) bool {
	return sameText(c.Token(a), c.Token(b))
}

// ComparatorFor returns the strict comparator when strict is set and the
// loose one otherwise.
func ComparatorFor(strict bool) Comparator {
	if strict {
		return StrictComparator{}
	}
	return LooseComparator{}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
