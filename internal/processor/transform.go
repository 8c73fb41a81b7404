// Package processor bridges the engine to the external payment
// processor. The Gateway performs the one network call the engine ever
// makes; Transform reduces the raw response to a canonical form that
// every independent execution of the same call computes identically, so
// nothing nondeterministic can reach durable state.
package processor

import (
	"net/http"
	"sort"
	"strings"
)

// Raw is an untransformed HTTP response as observed by one execution.
// Headers like Date, Request-Id and Set-Cookie differ between otherwise
// identical executions and must never be committed.
type Raw struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Header is a single canonical header pair.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Canonical is the replica-agnostic reduction of a Raw response: the
// status code, the payment-result payload, and an allowlisted, sorted
// header subset. Two Canonical values for the same underlying payment
// result are byte-for-byte equal.
type Canonical struct {
	Status  int      `json:"status"`
	Headers []Header `json:"headers"`
	Body    []byte   `json:"body"`
}

// Succeeded reports whether the canonical status is a 2xx.
func (c Canonical) Succeeded() bool {
	return c.Status >= 200 && c.Status < 300
}

// retainedHeaders is the full set of headers allowed into a Canonical
// response. Everything else is assumed nondeterministic.
var retainedHeaders = map[string]bool{
	"content-type": true,
}

// Transform canonicalizes a raw processor response. It is a pure
// function of its arguments: no I/O, no clock, no randomness, and the
// output header order is fixed by sorting. ctxBytes carries opaque
// correlation data supplied by the caller of the outcall; it does not
// influence the output.
func Transform(_ []byte, raw Raw) Canonical {
	out := Canonical{
		Status:  raw.Status,
		Headers: []Header{},
		Body:    raw.Body,
	}

	if out.Body == nil {
		out.Body = []byte{}
	}

	for name, values := range raw.Headers {
		lower := strings.ToLower(name)
		if !retainedHeaders[lower] {
			continue
		}

		for _, v := range values {
			out.Headers = append(out.Headers, Header{Name: lower, Value: v})
		}
	}

	sort.Slice(out.Headers, func(i, j int) bool {
		if out.Headers[i].Name != out.Headers[j].Name {
			return out.Headers[i].Name < out.Headers[j].Name
		}

		return out.Headers[i].Value < out.Headers[j].Value
	})

	return out
}
