// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package event

// Layer is the infrastructure dimension an event is attributed to.
// The platform knows Compute, Network and Storage; other values are
// passed through as custom layers.
type Layer string

const (
	Compute Layer = "Compute"
	Network Layer = "Network"
	Storage Layer = "Storage"
)

// Layers returns the fan-out layers in fan-out order.
func Layers() []Layer {
	return []Layer{Compute, Network, Storage}
}

// IsStandard reports whether l is one of Compute, Network, Storage.
func (l Layer) IsStandard() bool {
	switch l {
	case Compute, Network, Storage:
		return true
	}
	return false
}
