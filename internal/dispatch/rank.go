package dispatch

import (
	"fmt"
	"strings"

	counterdomain "github.com/TechharaInc/Tanaka/internal/counter/domain"
)

// FormatRank renders the scoreboard one entry per line, ranked from 1.
func FormatRank(scores []counterdomain.Score) string {
	lines := make([]string, 0, len(scores))
	for i, s := range scores {
		lines = append(lines, fmt.Sprintf("%d位 %s (%d回)", i+1, s.Name, s.Score))
	}
	return strings.Join(lines, "\n")
}
