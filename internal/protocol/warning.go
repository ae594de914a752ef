package protocol

import (
	"regexp"
	"strconv"
)

// WarningParser decodes one-line diagnostics printed by the documentation
// engine itself, e.g.
//
//	[warn]: Unknown tag @foo in file `lib/a.rb' near line 12
//
// General gates a line; Message, Location and Line extract fields from it. Each
// extractor uses its first capture group, or the whole match when it has none.
type WarningParser struct {
	General  *regexp.Regexp
	Message  *regexp.Regexp
	Location *regexp.Regexp
	Line     *regexp.Regexp
}

func (p WarningParser) Parse(raw string) []Record {
	out := []Record{}
	if p.General == nil {
		return out
	}
	for _, l := range splitLines(raw) {
		if !p.General.MatchString(l) {
			continue
		}
		rec := Record{
			FieldMessage:    extract(p.Message, l),
			FieldLocation:   extract(p.Location, l),
			FieldObjectName: "",
			FieldLine:       0,
		}
		if s := extract(p.Line, l); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				rec[FieldLine] = n
			}
		}
		out = append(out, rec)
	}
	return out
}

func extract(re *regexp.Regexp, s string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(s)
	switch {
	case m == nil:
		return ""
	case len(m) > 1:
		return m[1]
	default:
		return m[0]
	}
}

// EngineWarning builds the parser for a named engine warning, using the
// engine's standard "in file `x' near line n" suffix.
func EngineWarning(general string) WarningParser {
	return WarningParser{
		General:  regexp.MustCompile(general),
		Message:  regexp.MustCompile(`\[warn\]: (.*?)(?: in file |$)`),
		Location: regexp.MustCompile("in file `([^']+)'"),
		Line:     regexp.MustCompile(`near line (\d+)`),
	}
}
