// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package vmref

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidReference is matched by every error Resolve returns.
var ErrInvalidReference = errors.New("invalid VM reference")

// Kind is the addressing mode of a Reference.
type Kind int

const (
	// KindNone is the zero Reference: no VM is named.
	KindNone Kind = iota
	// KindHardwareAddress names the VM by a network interface MAC.
	KindHardwareAddress
	// KindIdentifiers names the VM by one or more unique identifiers.
	KindIdentifiers
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHardwareAddress:
		return "hardware-address"
	case KindIdentifiers:
		return "identifiers"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Selector is the caller's choice of addressing mode. The two
// implementations are HardwareAddress and Identifiers.
type Selector interface {
	selector()
}

// HardwareAddress selects a VM by the MAC address of one of its
// network interfaces. Hyphen ("00-15-5D-01-02-03") and colon
// ("00:15:5d:01:02:03") forms are accepted.
type HardwareAddress string

// Identifiers selects a VM by an ordered, non-empty list of unique
// identifiers.
type Identifiers []string

func (HardwareAddress) selector() {}
func (Identifiers) selector()     {}

// Reference is a resolved VM identity. Exactly one of the hardware
// address and the identifier list is populated, or neither for the
// zero value.
type Reference struct {
	kind            Kind
	hardwareAddress string
	identifiers     []string
}

// Resolve validates a Selector and returns the Reference it names.
func Resolve(selector Selector) (Reference, error) {
	switch s := selector.(type) {
	case HardwareAddress:
		address, err := canonicalHardwareAddress(string(s))
		if err != nil {
			return Reference{}, err
		}
		return Reference{kind: KindHardwareAddress, hardwareAddress: address}, nil

	case Identifiers:
		if len(s) == 0 {
			return Reference{}, fmt.Errorf("%w: identifier list is empty", ErrInvalidReference)
		}
		identifiers := make([]string, 0, len(s))
		for index, identifier := range s {
			identifier = strings.TrimSpace(identifier)
			if identifier == "" {
				return Reference{}, fmt.Errorf("%w: identifier %d is blank", ErrInvalidReference, index)
			}
			if parsed, err := uuid.Parse(identifier); err == nil {
				identifier = parsed.String()
			}
			identifiers = append(identifiers, identifier)
		}
		return Reference{kind: KindIdentifiers, identifiers: identifiers}, nil

	case nil:
		return Reference{}, fmt.Errorf("%w: no addressing mode selected", ErrInvalidReference)

	default:
		return Reference{}, fmt.Errorf("%w: unsupported selector %T", ErrInvalidReference, selector)
	}
}

// canonicalHardwareAddress parses an EUI-48 address and formats it as
// upper-case hyphen-separated octets, the form Windows tools print.
func canonicalHardwareAddress(text string) (string, error) {
	text = strings.TrimSpace(text)
	parsed, err := net.ParseMAC(text)
	if err != nil {
		return "", fmt.Errorf("%w: hardware address %q: %v", ErrInvalidReference, text, err)
	}
	if len(parsed) != 6 {
		return "", fmt.Errorf("%w: hardware address %q is %d octets, want 6", ErrInvalidReference, text, len(parsed))
	}
	octets := make([]string, len(parsed))
	for i, octet := range parsed {
		octets[i] = fmt.Sprintf("%02X", octet)
	}
	return strings.Join(octets, "-"), nil
}

// Kind returns the addressing mode.
func (r Reference) Kind() Kind { return r.kind }

// IsZero reports whether r names no VM.
func (r Reference) IsZero() bool { return r.kind == KindNone }

// HardwareAddress returns the canonical MAC address and true when r
// is a hardware address reference.
func (r Reference) HardwareAddress() (string, bool) {
	return r.hardwareAddress, r.kind == KindHardwareAddress
}

// Identifiers returns a copy of the identifier list, or nil when r is
// not an identifier reference.
func (r Reference) Identifiers() []string {
	if r.kind != KindIdentifiers {
		return nil
	}
	return slices.Clone(r.identifiers)
}

// Equal reports whether two references name the same VM the same way.
func (r Reference) Equal(other Reference) bool {
	return r.kind == other.kind &&
		r.hardwareAddress == other.hardwareAddress &&
		slices.Equal(r.identifiers, other.identifiers)
}

// String returns a short human-readable form for logs.
func (r Reference) String() string {
	switch r.kind {
	case KindHardwareAddress:
		return "mac:" + r.hardwareAddress
	case KindIdentifiers:
		return "vm:" + strings.Join(r.identifiers, ",")
	default:
		return "none"
	}
}
