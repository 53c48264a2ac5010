package domain

import "errors"

// ErrInvariant marks a mutation that would leave a progress record in an
// impossible state. It signals a programming defect, not a user error.
var ErrInvariant = errors.New("progress invariant violated")
