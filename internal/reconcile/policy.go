package reconcile

import (
	"fmt"
	"strings"
)

// Policy governs how incoming records interact with the live store.
type Policy int

const (
	// PolicyClean wipes the store and installs the backup verbatim.
	PolicyClean Policy = iota
	// PolicyRevert overwrites live records that match the backup's
	// reconciliation identity.
	PolicyRevert
	// PolicyUpdate overwrites only when the incoming record is strictly
	// newer by modification time.
	PolicyUpdate
	// PolicyAdd inserts everything, minting ids on collision.
	PolicyAdd
	// PolicyTest validates the backup without mutating anything.
	PolicyTest
)

var policyNames = map[Policy]string{
	PolicyClean:  "CLEAN",
	PolicyRevert: "REVERT",
	PolicyUpdate: "UPDATE",
	PolicyAdd:    "ADD",
	PolicyTest:   "TEST",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Mutates reports whether the policy writes to the store.
func (p Policy) Mutates() bool {
	return p != PolicyTest
}

// ImportsPreferences reports whether the backup's preference section is
// applied under this policy. ADD leaves the user's settings alone.
func (p Policy) ImportsPreferences() bool {
	switch p {
	case PolicyClean, PolicyRevert, PolicyUpdate:
		return true
	}
	return false
}

// ParsePolicy maps the wire name of a policy to its value. Matching is
// case insensitive.
func ParsePolicy(s string) (Policy, error) {
	upper := strings.ToUpper(s)
	for p, name := range policyNames {
		if name == upper {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown merge policy %q", s)
}
