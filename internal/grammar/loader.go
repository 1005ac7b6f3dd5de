package grammar

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadError wraps a grammar document failure with the dsl id (if known)
// and the underlying cause.
type LoadError struct {
	DSLID   string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.DSLID != "" {
		return fmt.Sprintf("grammar: load %s: %s", e.DSLID, e.Message)
	}
	return fmt.Sprintf("grammar: load: %s", e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// rawGrammar mirrors SxlGrammar but keeps Symbols as a yaml.Node so the
// loader can recover declaration order, which a plain Go map would lose.
type rawGrammar struct {
	MetaGrammarVersion string             `yaml:"meta_grammar_version"`
	DSL                DSLInfo            `yaml:"dsl"`
	Symbols            yaml.Node          `yaml:"symbols"`
	Literals           LiteralRules       `yaml:"literals"`
	Identifier         IdentifierRule     `yaml:"identifier"`
	ReservedSymbols    []string           `yaml:"reserved_symbols"`
	Embedding          EmbeddingConfig    `yaml:"embedding"`
	Constraints        []GlobalConstraint `yaml:"constraints"`
	LLMSpecs           LLMGuidance        `yaml:"llm_specs"`
}

// Load parses a single YAML grammar document. It rejects grammars that
// define the reserved EMBED symbol.
func Load(data []byte) (*SxlGrammar, error) {
	var raw rawGrammar
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Message: "invalid YAML", Cause: err}
	}

	g := &SxlGrammar{
		MetaGrammarVersion: raw.MetaGrammarVersion,
		DSL:                raw.DSL,
		Literals:           raw.Literals,
		Identifier:         raw.Identifier,
		ReservedSymbols:    raw.ReservedSymbols,
		Embedding:          raw.Embedding,
		Constraints:        raw.Constraints,
		LLMSpecs:           raw.LLMSpecs,
		Symbols:            map[string]SymbolDefinition{},
	}

	if raw.Symbols.Kind == yaml.MappingNode {
		content := raw.Symbols.Content
		for i := 0; i+1 < len(content); i += 2 {
			keyNode, valNode := content[i], content[i+1]
			name := keyNode.Value
			if name == EMBED {
				return nil, &LoadError{
					DSLID:   raw.DSL.ID,
					Message: fmt.Sprintf("symbol name %q is reserved and must not appear in symbols", EMBED),
				}
			}
			var def SymbolDefinition
			if err := valNode.Decode(&def); err != nil {
				return nil, &LoadError{DSLID: raw.DSL.ID, Message: fmt.Sprintf("symbol %q: invalid definition", name), Cause: err}
			}
			g.Symbols[name] = def
			g.SymbolOrder = append(g.SymbolOrder, name)
		}
	}

	if g.DSL.ID == "" {
		return nil, &LoadError{Message: "dsl.id is required"}
	}

	return g, nil
}
