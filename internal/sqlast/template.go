package sqlast

// Placeholder is one :name reference inside a Template.
type Placeholder struct {
	Name  string
	Start int // byte offset of the colon
	End   int // byte offset just past the name
}

// Placeholders scans template text for :name references. A colon that is
// part of "::" (a cast) or inside a quoted string is not a placeholder.
func Placeholders(text string) []Placeholder {
	var out []Placeholder
	inQuote := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\'' {
			inQuote = !inQuote
			continue
		}
		if inQuote || c != ':' {
			continue
		}
		if i+1 < len(text) && text[i+1] == ':' {
			i++ // skip cast operator
			continue
		}
		if i > 0 && text[i-1] == ':' {
			continue
		}
		j := i + 1
		for j < len(text) && isIdentChar(text[j], j == i+1) {
			j++
		}
		if j == i+1 {
			continue
		}
		out = append(out, Placeholder{Name: text[i+1 : j], Start: i, End: j})
		i = j - 1
	}
	return out
}

func isIdentChar(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9':
		return !first
	default:
		return false
	}
}
