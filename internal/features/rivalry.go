package features

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RivalrySet is a lookup of rivalry team pairs, stored sorted so the
// check is order-independent.
type RivalrySet map[[2]string]struct{}

// LoadRivalries reads a rivalry file: one pair per line, formatted
// "teamA, teamB". Blank lines are skipped.
func LoadRivalries(r io.Reader) (RivalrySet, error) {
	set := make(RivalrySet)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("rivalry file line %d: want two team codes, got %q", line, text)
		}
		set[sortedPair(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rivalry file: %w", err)
	}

	return set, nil
}

// IsRivalry reports whether the two teams are rivals, in either order.
func (rs RivalrySet) IsRivalry(t1, t2 string) bool {
	_, ok := rs[sortedPair(t1, t2)]
	return ok
}

// ContainsGame reports whether a canonical game ID
// ("YYYY-MM-DD_t1_t2") is a rivalry game.
func (rs RivalrySet) ContainsGame(gid string) bool {
	parts := strings.Split(gid, "_")
	if len(parts) != 3 {
		return false
	}
	return rs.IsRivalry(parts[1], parts[2])
}

func sortedPair(t1, t2 string) [2]string {
	if t2 < t1 {
		t1, t2 = t2, t1
	}
	return [2]string{t1, t2}
}
