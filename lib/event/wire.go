// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package event

import "github.com/siostechcorp/Windows-Signal/lib/vmref"

// UpdateMessage is the provider events update sent to the platform:
// an environment and its events. It is encoded as JSON by the HTTP
// client and as CBOR by the socket client.
type UpdateMessage struct {
	EnvironmentID int64       `json:"environment_id"`
	Events        []WireEvent `json:"events"`
}

// WireEvent is the wire form of a Record. At most one of VMs and
// VMUUIDs is set, matching the Reference kind.
type WireEvent struct {
	EnvironmentID int64    `json:"environment_id"`
	Description   string   `json:"description"`
	Source        string   `json:"source,omitempty"`
	Severity      string   `json:"severity"`
	Time          string   `json:"time"`
	EventType     string   `json:"event_type"`
	Category      string   `json:"category,omitempty"`
	Layer         string   `json:"layer"`
	VMs           []WireVM `json:"vms,omitempty"`
	VMUUIDs       []string `json:"vm_uuids,omitempty"`
}

// WireVM names a VM by its network interfaces.
type WireVM struct {
	NetworkInterfaces []WireNetworkInterface `json:"network_interfaces"`
}

// WireNetworkInterface carries one interface's hardware address.
type WireNetworkInterface struct {
	HWAddress string `json:"hw_address"`
}

func wireEvent(record Record) WireEvent {
	event := WireEvent{
		EnvironmentID: int64(record.EnvironmentID),
		Description:   record.Description,
		Source:        record.Source,
		Severity:      record.Severity,
		Time:          record.Time,
		EventType:     record.EventType,
		Category:      record.Category,
		Layer:         string(record.Layer),
	}
	switch record.VM.Kind() {
	case vmref.KindHardwareAddress:
		address, _ := record.VM.HardwareAddress()
		event.VMs = []WireVM{{
			NetworkInterfaces: []WireNetworkInterface{{HWAddress: address}},
		}}
	case vmref.KindIdentifiers:
		event.VMUUIDs = record.VM.Identifiers()
	}
	return event
}
