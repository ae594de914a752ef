package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

var locationRe = regexp.MustCompile(`^(.+):(\d+): (.+)$`)

// PayloadDecoder turns the second line of a violation into rule fields.
type PayloadDecoder func(payload string) Record

// TwoLine returns a parser for the two-lines-per-violation format:
//
//	<file>:<line>: <entity-title>
//	<payload>
//
// A location line that does not match is skipped as noise. A location line
// with nothing after it is discarded.
func TwoLine(decode PayloadDecoder) ParseFunc {
	return func(raw string) []Record {
		lines := splitLines(raw)
		out := []Record{}
		for i := 0; i < len(lines); i++ {
			m := locationRe.FindStringSubmatch(lines[i])
			if m == nil {
				continue
			}
			if i+1 >= len(lines) {
				break
			}
			line, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			payload := lines[i+1]
			i++

			rec := Record{}
			if decode != nil {
				if fields := decode(payload); fields != nil {
					rec = fields
				}
			}
			rec[FieldLocation] = m[1]
			rec[FieldLine] = line
			rec[FieldObjectName] = m[3]
			out = append(out, rec)
		}
		return out
	}
}

// PipeFields decodes a |-delimited payload into the named fields. The last name
// takes the remainder, so payload text round-trips verbatim. Missing trailing
// fields are set to "".
func PipeFields(names ...string) PayloadDecoder {
	return SeparatedFields("|", names...)
}

func SeparatedFields(sep string, names ...string) PayloadDecoder {
	return func(payload string) Record {
		rec := Record{}
		if len(names) == 0 {
			return rec
		}
		parts := strings.SplitN(payload, sep, len(names))
		for i, n := range names {
			if i < len(parts) {
				rec[n] = parts[i]
			} else {
				rec[n] = ""
			}
		}
		return rec
	}
}

// LocationLine formats the first line of a two-line violation.
func LocationLine(file string, line int, title string) string {
	return file + ":" + strconv.Itoa(line) + ": " + title
}
