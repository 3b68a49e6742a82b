// Package logging configures zerolog for the hody CLI and keeps
// credentials out of the rotating log file.
package logging

import (
	"io"
	"regexp"
)

// RedactedValue replaces anything that looks like a credential.
const RedactedValue = "[REDACTED]"

// Agent summaries and KB paths are free text typed by people, so the file
// writer scrubs the usual token shapes before they reach disk.
var secretPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{8,}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|token)\s*[:=]\s*["']?[^\s"',]{8,}`),
	regexp.MustCompile(`-----BEGIN[A-Z ]+PRIVATE KEY-----`),
}

// HasSecret reports whether s contains a credential-shaped substring.
func HasSecret(s string) bool {
	for _, p := range secretPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact replaces every credential-shaped substring of s.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// RedactingWriter scrubs secrets from each write before passing it on.
type RedactingWriter struct {
	w io.Writer
}

// NewRedactingWriter wraps w.
func NewRedactingWriter(w io.Writer) *RedactingWriter {
	return &RedactingWriter{w: w}
}

// Write reports len(p) on success so zerolog never sees a short write.
func (r *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := r.w.Write([]byte(Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}

type redactingWriteCloser struct {
	*RedactingWriter
	closer io.Closer
}

func (r *redactingWriteCloser) Close() error {
	return r.closer.Close()
}
