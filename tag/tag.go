package tag

import (
	"errors"
	"fmt"
	"strings"
)

// Tag is a single severity level. Each defined tag occupies its own bit so
// that tags can be OR'd together into a [Mask].
type Tag uint8

const (
	// Debug is the lowest severity.
	Debug Tag = 1 << iota
	// Info is for routine progress messages.
	Info
	// Warn is for unexpected but recoverable conditions.
	Warn
	// Error is for failed operations.
	Error
	// Fatal is the highest severity. It carries no control-flow meaning.
	Fatal

	// Max is the tag with the highest severity.
	Max = Fatal
)

// Mask is a set of tags, one bit per [Tag].
type Mask uint8

const (
	// None matches no tag.
	None Mask = 0
	// All matches every defined tag.
	All Mask = Mask(Max | (Max - 1))
)

var (
	// ErrUnknownTag indicates an unrecognized tag name.
	ErrUnknownTag = errors.New("unknown tag")
	// ErrInvalidMask indicates a mask expression that could not be parsed.
	ErrInvalidMask = errors.New("invalid mask")
)

var (
	names  = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	labels = [...]string{"DEBUG", "INFO ", "WARN ", "ERROR", "FATAL"}

	aliases = map[string]Tag{
		"debug":   Debug,
		"dbg":     Debug,
		"info":    Info,
		"inf":     Info,
		"warn":    Warn,
		"warning": Warn,
		"wrn":     Warn,
		"error":   Error,
		"err":     Error,
		"fatal":   Fatal,
		"ftl":     Fatal,
	}
)

// Tags returns every defined tag in ascending severity.
func Tags() []Tag {
	return []Tag{Debug, Info, Warn, Error, Fatal}
}

// GetAllTagStrings returns the lowercase names of all tags in ascending
// severity, suitable for shell completion.
func GetAllTagStrings() []string {
	s := make([]string, 0, len(names))
	for _, n := range names {
		s = append(s, strings.ToLower(n))
	}

	return s
}

// Valid reports whether t is exactly one defined tag.
func (t Tag) Valid() bool {
	return t != 0 && t&(t-1) == 0 && Mask(t)&All != 0
}

// String returns the tag name, e.g. "WARN".
func (t Tag) String() string {
	i := t.index()
	if i < 0 {
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}

	return names[i]
}

// Label returns the tag name padded to a fixed width of five columns.
func (t Tag) Label() string {
	i := t.index()
	if i < 0 {
		return t.String()
	}

	return labels[i]
}

// Mask returns the mask containing only t.
func (t Tag) Mask() Mask {
	return Mask(t) & All
}

func (t Tag) index() int {
	if !t.Valid() {
		return -1
	}

	i := 0
	for v := t; v > 1; v >>= 1 {
		i++
	}

	return i
}

// AtOrBelow returns the mask containing t and every less severe tag.
func AtOrBelow(t Tag) Mask {
	return Mask(t|(t-1)) & All
}

// AtOrAbove returns the mask containing t and every more severe tag.
func AtOrAbove(t Tag) Mask {
	return All &^ Mask(t-1)
}

// Has reports whether m contains t.
func (m Mask) Has(t Tag) bool {
	return m&Mask(t) != 0
}

// Tags returns the tags contained in m in ascending severity.
func (m Mask) Tags() []Tag {
	var tags []Tag

	for _, t := range Tags() {
		if m.Has(t) {
			tags = append(tags, t)
		}
	}

	return tags
}

// String renders m as "all", "none", or tag names joined with "|".
func (m Mask) String() string {
	switch m & All {
	case All:
		return "all"
	case None:
		return "none"
	}

	tags := m.Tags()
	parts := make([]string, 0, len(tags))

	for _, t := range tags {
		parts = append(parts, strings.ToLower(t.String()))
	}

	return strings.Join(parts, "|")
}

// Parse returns the tag named by s. Matching is case-insensitive and
// accepts the short forms "dbg", "inf", "wrn", "err" and "ftl".
func Parse(s string) (Tag, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}

	return t, nil
}

// ParseMask parses a mask expression. Terms are separated by "," or "|" and
// each term is one of:
//
//   - "all" or "none"
//   - a tag name, matching only that tag
//   - a tag name followed by "+", matching that tag and all above it
//   - a tag name followed by "-", matching that tag and all below it
//
// For example, "error+" matches ERROR and FATAL, and "debug,warn" matches
// exactly DEBUG and WARN.
func ParseMask(s string) (Mask, error) {
	terms := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|'
	})
	if len(terms) == 0 {
		return None, fmt.Errorf("%w: empty expression", ErrInvalidMask)
	}

	var m Mask

	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))

		switch term {
		case "":
			continue
		case "all", "*":
			m |= All
			continue
		case "none":
			continue
		}

		build := Tag.Mask

		switch {
		case strings.HasSuffix(term, "+"):
			build = AtOrAbove
			term = strings.TrimSuffix(term, "+")

		case strings.HasSuffix(term, "-"):
			build = AtOrBelow
			term = strings.TrimSuffix(term, "-")
		}

		t, err := Parse(term)
		if err != nil {
			return None, fmt.Errorf("%w: %w", ErrInvalidMask, err)
		}

		m |= build(t)
	}

	return m, nil
}
