package forms

import "strings"

// EncodeList joins items with newlines for a textarea. Items are not
// escaped: an item that itself contains a newline comes back from
// DecodeList as several items.
func EncodeList(items []string) string {
	return strings.Join(items, "\n")
}

// DecodeList splits textarea text on newlines. Empty text is the empty list.
func DecodeList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
