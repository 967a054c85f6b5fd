// Package screening flags injection payloads in analyst-submitted text.
package screening

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// Kinds of payload a field can be flagged for.
const (
	KindSQLi = "sqli"
	KindXSS  = "xss"
)

// Finding describes one flagged field.
type Finding struct {
	Field       string // Name of the field that failed the check
	Kind        string // KindSQLi or KindXSS
	Fingerprint string // libinjection fingerprint, SQLi only
}

// CheckField runs the SQLi and XSS detectors over value. It returns nil for
// clean or empty values.
//
// Example:
//
//	CheckField("text", "Convoy sighted near the bridge") // nil
//	CheckField("text", "' OR '1'='1")                     // Kind == "sqli"
//	CheckField("headline", "<script>alert(1)</script>")   // Kind == "xss"
func CheckField(field, value string) *Finding {
	if value == "" {
		return nil
	}
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &Finding{Field: field, Kind: KindSQLi, Fingerprint: string(fingerprint)}
	}
	if libinjection.IsXSS(value) {
		return &Finding{Field: field, Kind: KindXSS}
	}
	return nil
}

// CheckAll screens every field and returns the findings in the order the
// fields were given. Fields are name/value pairs.
func CheckAll(fields ...[2]string) []*Finding {
	var findings []*Finding
	for _, f := range fields {
		if finding := CheckField(f[0], f[1]); finding != nil {
			findings = append(findings, finding)
		}
	}
	return findings
}
