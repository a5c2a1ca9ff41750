package processor

import (
	"testing"

	"github.com/dvloznov/statement-extractor/internal/domain"
)

// stubProcessor overrides Detect so dispatch-order tests can force
// matches without real statement text.
type stubProcessor struct {
	Processor
	code    string
	matches bool
}

func (s *stubProcessor) Detect(string) bool { return s.matches }

func (s *stubProcessor) Descriptor() domain.IssuerDescriptor {
	return domain.IssuerDescriptor{Code: s.code}
}

func TestRegistryDispatch(t *testing.T) {
	reg := BuildRegistry()

	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{"bofa", bofaStatement, "BOFA"},
		{"chase", chaseStatement(), "CHASE"},
		{"amex", amexStatement, "AMEX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := reg.Match(tt.text)
			if !ok {
				t.Fatal("no processor matched")
			}
			if got := p.Descriptor().Code; got != tt.wantCode {
				t.Errorf("matched %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestRegistryNoMatch(t *testing.T) {
	reg := BuildRegistry()
	if p, ok := reg.Match("a statement from some credit union"); ok {
		t.Errorf("unexpected match: %s", p.Descriptor().Code)
	}
}

func TestRegistryFirstRegistrantWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubProcessor{code: "FIRST", matches: true})
	reg.Register(&stubProcessor{code: "SECOND", matches: true})

	p, ok := reg.Match("anything")
	if !ok {
		t.Fatal("no processor matched")
	}
	if p.Descriptor().Code != "FIRST" {
		t.Errorf("matched %s, want FIRST", p.Descriptor().Code)
	}
}

func TestRegistryDescriptors(t *testing.T) {
	descs := BuildRegistry().Descriptors()
	want := []string{"BOFA", "CHASE", "AMEX"}
	if len(descs) != len(want) {
		t.Fatalf("got %d descriptors, want %d", len(descs), len(want))
	}
	for i, code := range want {
		if descs[i].Code != code {
			t.Errorf("descriptor %d = %s, want %s", i, descs[i].Code, code)
		}
	}
}
