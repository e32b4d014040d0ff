package query

import (
	"fmt"
	"strings"

	_ "embed"

	"github.com/hirelens/hirelens/internal/domain"
)

//go:embed prompt_standard.md
var standardTemplate string

//go:embed prompt_strict.md
var strictTemplate string

// Variant selects the evaluation prompt wording.
type Variant string

const (
	// VariantStandard is the default evaluation prompt.
	VariantStandard Variant = "standard"
	// VariantStrict demands explicit evidence for every requirement.
	VariantStrict Variant = "strict"
)

// ParseVariant validates a configured variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantStandard, VariantStrict:
		return Variant(s), nil
	case "":
		return VariantStandard, nil
	default:
		return "", fmt.Errorf("unknown prompt variant %q", s)
	}
}

func (v Variant) template() string {
	if v == VariantStrict {
		return strictTemplate
	}
	return standardTemplate
}

// buildInstruction interpolates the context block and the question into the
// variant's template. An empty context block stays empty; the template
// instructs the model how to respond to it.
func buildInstruction(v Variant, fragments []domain.RetrievedFragment, question string) string {
	prompt := strings.ReplaceAll(v.template(), "{{CONTEXT}}", contextBlock(fragments))
	return strings.ReplaceAll(prompt, "{{QUESTION}}", question)
}

// contextBlock serializes retrieved fragments, best match first.
func contextBlock(fragments []domain.RetrievedFragment) string {
	if len(fragments) == 0 {
		return ""
	}

	var b strings.Builder
	for i, frag := range fragments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Candidate: %s\nTarget role: %s\nSkills: %s\n%s",
			frag.Name, frag.Role, strings.Join(frag.Skills, ", "), frag.Text)
	}
	return b.String()
}
