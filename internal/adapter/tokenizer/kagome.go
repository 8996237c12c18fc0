// Package tokenizer adapts the Kagome morphological analyzer to the lookup
// pipeline's tokenizer contract.
package tokenizer

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// Kagome analyzes Japanese text with the bundled IPA dictionary. It is safe
// for concurrent use.
type Kagome struct {
	t *kagome.Tokenizer
}

// New builds the analyzer. The IPA dictionary is compiled into the binary,
// so construction does not touch the filesystem.
func New() (*Kagome, error) {
	t, err := kagome.New(ipa.Dict(), kagome.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init kagome tokenizer: %w", err)
	}
	return &Kagome{t: t}, nil
}

// Tokenize analyzes one text run and reports every token with its surface
// and the analyzer's classification, in input order.
func (k *Kagome) Tokenize(text string) []domain.Token {
	if text == "" {
		return nil
	}

	ktoks := k.t.Tokenize(text)
	tokens := make([]domain.Token, 0, len(ktoks))
	for _, kt := range ktoks {
		if kt.Class == kagome.DUMMY {
			continue
		}
		tokens = append(tokens, domain.Token{
			Surface: kt.Surface,
			Class:   classOf(kt.Class),
		})
	}
	return tokens
}

// classOf maps kagome token classes onto the domain classification.
func classOf(c kagome.TokenClass) domain.TokenClass {
	switch c {
	case kagome.UNKNOWN:
		return domain.TokenClassUnknown
	case kagome.USER:
		return domain.TokenClassUser
	default:
		return domain.TokenClassKnown
	}
}
