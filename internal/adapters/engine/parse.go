package engine

import (
	"strconv"
	"strings"
)

// searchInfo is the distilled payload of one "info" line: search depth,
// score (centipawns or mate, from the engine's side-to-move perspective),
// and the principal variation in the engine's own notation.
type searchInfo struct {
	depth int
	cp    *int
	mate  *int
	pv    []string
}

func (si searchInfo) hasScore() bool {
	return si.cp != nil || si.mate != nil
}

// merge keeps the newest scored line, falling back to the previous principal
// variation when the new line omits one.
func (si searchInfo) merge(next searchInfo) searchInfo {
	if !next.hasScore() {
		return si
	}
	if len(next.pv) == 0 {
		next.pv = si.pv
	}
	return next
}

// parseInfo extracts depth, score and pv from an engine "info" line.
// Returns false for lines that carry no score (e.g. "info string ...",
// currmove progress reports).
func parseInfo(line string) (searchInfo, bool) {
	if !strings.HasPrefix(line, "info") {
		return searchInfo{}, false
	}
	fields := strings.Fields(line)
	var si searchInfo
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				si.depth, _ = strconv.Atoi(fields[i+1])
			}
		case "score":
			if i+2 < len(fields) {
				v, err := strconv.Atoi(fields[i+2])
				if err != nil {
					break
				}
				switch fields[i+1] {
				case "cp":
					si.cp = &v
				case "mate":
					si.mate = &v
				}
			}
		case "pv":
			si.pv = fields[i+1:]
			i = len(fields)
		}
	}
	if !si.hasScore() {
		return searchInfo{}, false
	}
	return si, true
}

// parseBestMove extracts the move from a "bestmove" line. The engine reports
// "(none)" for positions with no legal moves; that surfaces as an empty move.
func parseBestMove(line string) (string, bool) {
	if !strings.HasPrefix(line, "bestmove") {
		return "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] == "(none)" {
		return "", true
	}
	return fields[1], true
}
