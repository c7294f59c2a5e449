package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathblocks/internal/board"
)

const systemPrompt = `You write challenge questions for children using a virtual manipulatives board.

Rules:
- Write one question the learner answers by placing blocks on the board.
- Use plain ASCII. Write fractions as 3/4.
- "build" questions ask for a value made from whole blocks in the listed columns. Never use more blocks in a column than its limit, and use fewer than the regroup ratio so nothing regroups.
- "equation" questions ask for two pieces whose sum is the answer. List exactly the two pieces.
- parts must add up exactly to expected.
- Difficulty 1 is a single column or two small pieces, 3 uses most columns.
- Do not repeat any answer from the "already used" list.`

func describeLayout(l board.Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s\nColumns:\n", l.Name)
	for _, c := range l.Categories {
		fmt.Fprintf(&b, "- %s (%s): each block is worth %s, at most %d blocks", c.Key, c.Label, c.Magnitude, c.Capacity)
		if r := l.Ratio(c.Key); r > 0 {
			fmt.Fprintf(&b, ", %d regroup into the next column", r)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Largest answer: %s\n", l.MaxTotal())
	return b.String()
}

func buildUserMessage(in Input, maxPrior int) string {
	var b strings.Builder
	b.WriteString(describeLayout(in.Layout))
	fmt.Fprintf(&b, "Kind: %s\n", in.Kind)
	fmt.Fprintf(&b, "Difficulty: %d\n", in.Difficulty)

	b.WriteString("\nAlready used answers:\n")
	prior := in.Used
	if maxPrior > 0 && len(prior) > maxPrior {
		prior = prior[len(prior)-maxPrior:]
	}
	if len(prior) == 0 {
		b.WriteString("None")
	}
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
