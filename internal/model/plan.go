package model

import (
	"fmt"
	"strings"
)

// Plan holds the ordered, disjoint reconciliation sequences for one kind.
// An identifier appears in exactly one slice or in none.
type Plan struct {
	Kind      string
	Create    []string
	Update    []string
	Delete    []string
	Unchanged []string
}

// Empty reports whether the plan contains no mutating operations.
func (p *Plan) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// String renders a human readable summary of the plan.
func (p *Plan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "plan for %s:\n", p.Kind)
	fmt.Fprintf(&b, "  create (%d): %s\n", len(p.Create), strings.Join(p.Create, ", "))
	fmt.Fprintf(&b, "  update (%d): %s\n", len(p.Update), strings.Join(p.Update, ", "))
	fmt.Fprintf(&b, "  delete (%d): %s\n", len(p.Delete), strings.Join(p.Delete, ", "))
	fmt.Fprintf(&b, "  unchanged (%d)\n", len(p.Unchanged))
	return b.String()
}
