package consent

import (
	"net/http/httptest"
	"testing"
	"time"
)

func record(doc string) Record {
	return Record{
		DocumentName: doc,
		IPAddress:    "10.0.0.1",
		ConsentAt:    time.Now(),
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name      string
		activeDoc int
		records   []Record
		want      bool
	}{
		{"no active documents", 0, nil, true},
		{"no records, one document", 1, nil, false},
		{"fewer records than documents", 2, []Record{record("kvkk")}, false},
		{"exact coverage", 2, []Record{record("kvkk"), record("rules")}, true},
		{"extra records", 1, []Record{record("kvkk"), record("rules")}, true},
		// Count threshold, not identity match: duplicates of one document
		// satisfy two documents. Established behavior.
		{"duplicate acknowledgements pass", 2, []Record{record("kvkk"), record("kvkk")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Complete(tt.activeDoc, tt.records); got != tt.want {
				t.Errorf("Complete(%d, %d records) = %v, want %v",
					tt.activeDoc, len(tt.records), got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded list takes first", "203.0.113.7, 70.41.3.18", "", "10.0.0.1:1234", "203.0.113.7"},
		{"real ip fallback", "", "203.0.113.9", "10.0.0.1:1234", "203.0.113.9"},
		{"remote addr fallback", "", "", "192.0.2.4:5678", "192.0.2.4"},
		{"ipv4 loopback normalizes", "", "", "127.0.0.1:9999", "localhost"},
		{"ipv6 loopback normalizes", "", "", "[::1]:9999", "localhost"},
		{"forwarded loopback normalizes", "127.0.0.1", "", "10.0.0.1:1234", "localhost"},
		{"nothing known", "", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/ip", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-Ip", tt.realIP)
			}

			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
