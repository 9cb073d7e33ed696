package upgrade

import (
	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/schema"
	"github.com/thoreinstein/passmenu/internal/tree"
)

// Move relocates one dotted path.
type Move struct {
	From string
	To   string
}

// MoveStep builds a step whose transform is an ordered list of moves.
// Moves whose source is absent are skipped.
func MoveStep(from, to schema.Version, description string, moves ...Move) Step {
	return Step{
		From:        from,
		To:          to,
		Description: description,
		Apply: func(doc tree.Mapping) (tree.Mapping, error) {
			for _, mv := range moves {
				if err := doc.Move(mv.From, mv.To); err != nil {
					return nil, errors.Wrapf(err, "moving %s to %s", mv.From, mv.To)
				}
			}
			return doc, nil
		},
	}
}

// v0_1Moves groups the flat gpg settings of 0.1 documents. The
// "gnpghome-override" spelling is what 1.0 documents actually use.
var v0_1Moves = []Move{
	{From: "gpg-path", To: "gpg.gpg-path"},
	{From: "gnupghome-override", To: "gpg.gnpghome-override"},
	{From: "preload-gpg-agent", To: "gpg.gpg-agent.preload"},
	{From: "pinentry-fix", To: "gpg.pinentry-fix"},
}

// FromV0_1 upgrades a 0.1 document to 1.0.
var FromV0_1 = MoveStep(schema.V0_1, schema.V1_0, "group gpg settings under gpg", v0_1Moves...)

func builtinSteps() []Step {
	return []Step{
		FromV0_1,
	}
}
