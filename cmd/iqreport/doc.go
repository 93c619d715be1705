// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// iqreport reports Windows events to the monitoring platform.
//
// Each invocation turns one event occurrence into a batch of layer
// records (Compute, Network, and Storage unless a layer is named),
// opens a session with the platform, sends the batch, and closes the
// session. It is meant to be run from a Windows scheduled task
// attached to an event log trigger:
//
//	iqreport windows 180005401 00-15-5D-01-02-03 App 1001 Error "Disk full" 2017-10-11T15:18:33-0500
//
// or with named flags:
//
//	iqreport send --source App --event-id 1001 --severity Error --message "Disk full"
//
// Configuration comes from --config or IQREPORT_CONFIG; see lib/config.
// "iqreport sink" runs a local receiving end of the socket protocol
// for testing a reporting host without a platform.
package main
