package statement

import "strings"

// Split breaks a SQL script into individual statements on semicolons,
// ignoring semicolons inside quoted literals, quoted identifiers and
// comments. Empty statements are dropped. A parser-based splitter is not an
// option here: the grammar this layer exists for (ATTACH and friends) is
// exactly what general SQL parsers reject.
func Split(script string) []string {
	var (
		stmts   []string
		start   int
		inLine  bool // -- comment
		inBlock bool // /* comment */
		quote   byte // active quote char, 0 when outside literals
	)

	flush := func(end int) {
		if s := strings.TrimSpace(script[start:end]); s != "" {
			stmts = append(stmts, s)
		}
		start = end + 1
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]

		switch {
		case inLine:
			if ch == '\n' {
				inLine = false
			}
		case inBlock:
			if ch == '*' && i+1 < len(script) && script[i+1] == '/' {
				inBlock = false
				i++
			}
		case quote != 0:
			if ch == quote {
				// Doubled quote chars escape themselves inside literals.
				if i+1 < len(script) && script[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '-' && i+1 < len(script) && script[i+1] == '-':
			inLine = true
			i++
		case ch == '/' && i+1 < len(script) && script[i+1] == '*':
			inBlock = true
			i++
		case ch == ';':
			flush(i)
		}
	}

	flush(len(script))
	return stmts
}
