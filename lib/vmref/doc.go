// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package vmref resolves the virtual machine an event concerns.
//
// The platform accepts two ways of naming a VM: by the hardware (MAC)
// address of one of its network interfaces, or by a list of VM unique
// identifiers (typically the hypervisor's VM UUIDs). A caller picks
// exactly one [Selector] and passes it to [Resolve] once, at the
// boundary where configuration and flags are read. The resulting
// [Reference] is then carried unchanged into every record built for
// the event.
//
// The zero Reference means "no specific VM"; records built with it
// omit VM identity entirely.
package vmref
