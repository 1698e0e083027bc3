// Package consent holds the consent-completeness check and client
// provenance helpers for the digital signature trail.
package consent

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Record is a client-captured acknowledgement of one policy document,
// before persistence.
type Record struct {
	DocumentName string    `json:"documentName"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	ConsentAt    time.Time `json:"consentAt"`
}

// Complete reports whether a submission attempt carries enough consent
// records to cover the active documents. The check is a count threshold,
// not an identifier-set match: acknowledging the same document twice
// satisfies it. That matches the established behavior this system
// migrated from and is deliberately preserved.
func Complete(activeDocCount int, records []Record) bool {
	if activeDocCount == 0 {
		return true
	}
	return len(records) >= activeDocCount
}

// ClientIP resolves the address to record on a consent row: the first
// X-Forwarded-For entry, then X-Real-IP, then the direct connection,
// then "unknown". Loopback normalizes to "localhost".
func ClientIP(r *http.Request) string {
	ip := ""

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("X-Real-Ip"))
	}

	if ip == "" && r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}

	if ip == "" {
		return "unknown"
	}

	if ip == "::1" || ip == "127.0.0.1" {
		return "localhost"
	}

	return ip
}
