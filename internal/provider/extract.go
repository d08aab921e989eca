package provider

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// DateTimeLayout is the timestamp format CHPP uses in every document.
const DateTimeLayout = "2006-01-02 15:04:05"

// Text returns the trimmed text of the element at path below node, or def when
// the element is missing or empty.
//
// CHPP ships optional fields inconsistently (a whole block can be absent from
// one response and present in the next), so none of the extractors here return
// errors. Call sites that need a value to exist check the result themselves.
func Text(node *etree.Element, path, def string) string {
	if node == nil {
		return def
	}
	el := node.FindElement(path)
	if el == nil {
		return def
	}
	if text := strings.TrimSpace(el.Text()); text != "" {
		return text
	}
	return def
}

// Int parses the element at path as an integer. Missing elements and malformed
// numerics both resolve to def.
func Int(node *etree.Element, path string, def int) int {
	if v, ok := parseInt(Text(node, path, "")); ok {
		return v
	}
	return def
}

// Bool reads the element at path as a flag. "true", "1" and "yes" are true and
// "false", "0" and "no" are false, case-insensitively. Anything else resolves
// to def.
func Bool(node *etree.Element, path string, def bool) bool {
	switch strings.ToLower(Text(node, path, "")) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

// OptText is Text for optional fields: nil when the element is missing or empty.
func OptText(node *etree.Element, path string) *string {
	text := Text(node, path, "")
	if text == "" {
		return nil
	}
	return &text
}

// OptInt is Int for optional fields: nil when the element is missing or the
// text is not an integer.
func OptInt(node *etree.Element, path string) *int {
	if v, ok := parseInt(Text(node, path, "")); ok {
		return &v
	}
	return nil
}

// OptTime parses the element at path with DateTimeLayout. Values that also
// carry a "T" separator are accepted.
func OptTime(node *etree.Element, path string) *time.Time {
	text := Text(node, path, "")
	if text == "" {
		return nil
	}
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}

func parseInt(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
