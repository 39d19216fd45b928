//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseApprovalID verifies that parsing never panics on arbitrary input
// and returns either a usable ID or an error, never both.
func FuzzParseApprovalID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE deletion_approvals;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseApprovalID(input)

		if err == nil && id.IsNil() {
			t.Errorf("ParseApprovalID(%q) returned a nil ID without an error", input)
		}
		if err != nil && !id.IsNil() {
			t.Errorf("ParseApprovalID(%q) returned both an ID and an error", input)
		}
	})
}
