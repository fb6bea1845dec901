package service

import (
	"regexp"
	"strings"

	"taskagent/internal/domain/entity"
)

// Call syntax accepted from LLM replies: identifier '(' comma-separated
// args ')', where an arg is either a bare token or a quoted string. Quoted
// segments are atomic, so commas inside quotes do not split.
var callPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(([^()]*)\)`)

// ParseInvocations extracts every name(args) call from a reply, in order of
// appearance. The caller decides how many to act on; the loop executes only
// the first recognized one per step.
func ParseInvocations(text string) []entity.ActionInvocation {
	matches := callPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]entity.ActionInvocation, 0, len(matches))
	for _, m := range matches {
		out = append(out, entity.ActionInvocation{
			Name: m[1],
			Args: SplitArgs(m[2]),
		})
	}
	return out
}

// SplitArgs splits an argument list on top-level commas. Single- or
// double-quoted segments are treated as atomic tokens; surrounding quotes
// are stripped from the final values. An empty list yields nil.
func SplitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var args []string
	var cur strings.Builder
	var quote rune

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == ',':
			args = append(args, cleanArg(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	args = append(args, cleanArg(cur.String()))
	return args
}

func cleanArg(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
