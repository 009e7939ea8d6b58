package dbx

import "strings"

// corruptionMarkers are matched case-insensitively against the error text of
// the storage engine. Adjust here when switching engines.
var corruptionMarkers = []string{
	"closed",
	"disk image is malformed",
	"malformed",
	"verify the data integrity",
}

// IndicatesCorruption reports whether err looks like the underlying store
// file is closed or corrupt. A nil error never does.
func IndicatesCorruption(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range corruptionMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
