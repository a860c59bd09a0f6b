package normalize

import "strings"

// Region turns a display or ARM region into a region key:
// "Australia East" -> "australiaeast". "Global" and blank map to ""
// which denotes a global meter.
func Region(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if key == "global" {
		return ""
	}
	return key
}
