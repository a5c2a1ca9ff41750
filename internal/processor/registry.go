package processor

import (
	"github.com/dvloznov/statement-extractor/internal/domain"
)

// Registry holds the known issuer processors and performs detection
// dispatch. Registration order is the tie-break when several processors
// would match: first registrant wins. The registry is read-only after
// startup registration, so concurrent Match calls need no locking.
type Registry struct {
	procs []Processor
}

// NewRegistry returns an empty registry. Tests use it to build a
// registry holding only the processors under test.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a processor to the dispatch order.
func (r *Registry) Register(p Processor) {
	r.procs = append(r.procs, p)
}

// Match scans the registered processors in order and returns the first
// whose Detect accepts the text. The second return value is false when
// none match.
func (r *Registry) Match(text string) (Processor, bool) {
	for _, p := range r.procs {
		if p.Detect(text) {
			return p, true
		}
	}
	return nil, false
}

// Descriptors lists the issuers of all registered processors, in
// registration order.
func (r *Registry) Descriptors() []domain.IssuerDescriptor {
	out := make([]domain.IssuerDescriptor, 0, len(r.procs))
	for _, p := range r.procs {
		out = append(out, p.Descriptor())
	}
	return out
}

// BuildRegistry constructs the registry with every known processor
// registered. Called once at startup; there is no ambient global
// registry.
func BuildRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewBankOfAmerica())
	r.Register(NewChase())
	r.Register(NewAmex())
	return r
}
