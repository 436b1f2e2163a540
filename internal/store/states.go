package store

import (
	"regexp"
	"strings"

	"uccdatahub/pkg/types"
)

// stateCodes is the fixed allow-list of jurisdictions whose codes may
// become table names. State identifiers arriving from the API are
// checked against this set before they get anywhere near SQL.
var stateCodes = map[string]struct{}{
	"al": {}, "ak": {}, "az": {}, "ar": {}, "ca": {}, "co": {}, "ct": {},
	"de": {}, "dc": {}, "fl": {}, "ga": {}, "hi": {}, "id": {}, "il": {},
	"in": {}, "ia": {}, "ks": {}, "ky": {}, "la": {}, "me": {}, "md": {},
	"ma": {}, "mi": {}, "mn": {}, "ms": {}, "mo": {}, "mt": {}, "ne": {},
	"nv": {}, "nh": {}, "nj": {}, "nm": {}, "ny": {}, "nc": {}, "nd": {},
	"oh": {}, "ok": {}, "or": {}, "pa": {}, "ri": {}, "sc": {}, "sd": {},
	"tn": {}, "tx": {}, "ut": {}, "vt": {}, "va": {}, "wa": {}, "wv": {},
	"wi": {}, "wy": {},
}

// columnNamePattern bounds what an admin-configured column name may look
// like. Double quotes are excluded by construction, so a validated name
// is safe to use as a quoted SQL identifier.
var columnNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _#/.\-]{0,63}$`)

// NormalizeState lowercases and strips whitespace from a state code and
// validates it against the registry.
func NormalizeState(state string) (string, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(state), " ", ""))
	if _, ok := stateCodes[s]; !ok {
		return "", types.ErrUnknownState
	}
	return s, nil
}

// ValidColumnName reports whether name may be used as a destination
// column identifier.
func ValidColumnName(name string) bool {
	return columnNamePattern.MatchString(name)
}

// quoteIdent wraps a validated identifier in double quotes. Callers must
// have validated the name first; this is not an escaping mechanism.
func quoteIdent(name string) string {
	return `"` + name + `"`
}

// stateTable returns the schema-qualified quoted table reference for a
// registry-validated state code.
func stateTable(state string) string {
	return quoteIdent(schemaName) + "." + quoteIdent(state)
}
