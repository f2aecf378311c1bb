package featurization

import (
	"bufio"
	"io"
	"strings"

	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// maxLineBytes bounds one input line; USPTO reactions stay far below it.
const maxLineBytes = 1 << 20

// ParseReactionLine splits "<reaction> [edits]" into its fields.  A reaction
// given as "reactants>reagents>products" is reduced to its reactant side.
func ParseReactionLine(line string) (reaction_center.ReactionEdits, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return reaction_center.ReactionEdits{}, errors.InvalidParam("empty reaction line")
	}
	if len(fields) > 2 {
		return reaction_center.ReactionEdits{}, errors.InvalidParam("too many fields in reaction line").
			WithDetailf("fields=%d", len(fields))
	}

	rxn := fields[0]
	if i := strings.IndexByte(rxn, '>'); i >= 0 {
		rxn = rxn[:i]
	}
	if rxn == "" {
		return reaction_center.ReactionEdits{}, errors.InvalidParam("reaction has no reactants")
	}

	out := reaction_center.ReactionEdits{Reaction: rxn}
	if len(fields) == 2 {
		out.Edits = fields[1]
	}
	return out, nil
}

// ReadReactions reads one reaction per line from r.  Blank lines and lines
// starting with "#" are skipped.  With requireEdits set, every line must
// carry an edit field.
func ReadReactions(r io.Reader, requireEdits bool) ([]reaction_center.ReactionEdits, error) {
	var out []reaction_center.ReactionEdits
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, err := ParseReactionLine(line)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "bad input line").WithDetailf("line=%d", lineNo)
		}
		if requireEdits && item.Edits == "" {
			return nil, errors.InvalidEdit("missing edits field").WithDetailf("line=%d", lineNo)
		}
		out = append(out, item)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "read reactions")
	}
	return out, nil
}

//Personal.AI order the ending
