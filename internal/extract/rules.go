package extract

// rule is one step of an ordered extraction cascade.
type rule[In, Out any] struct {
	name  string
	apply func(In) (Out, bool)
}

// cascade evaluates its rules in order; the first rule that reports a
// match wins and later rules are not consulted.
type cascade[In, Out any] []rule[In, Out]

func (c cascade[In, Out]) first(in In) (Out, string, bool) {
	for _, r := range c {
		if out, ok := r.apply(in); ok {
			return out, r.name, true
		}
	}
	var zero Out
	return zero, "", false
}

// firstOf runs c against each input in turn and returns the first match.
func firstOf[In, Out any](c cascade[In, Out], inputs ...In) (Out, bool) {
	for _, in := range inputs {
		if out, _, ok := c.first(in); ok {
			return out, true
		}
	}
	var zero Out
	return zero, false
}
