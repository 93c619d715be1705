// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package event

// Fanout replicates base across layers. With a non-empty explicit
// layer the result is a single record tagged with it; otherwise it is
// one record per entry of Layers(), in that order. The records differ
// only in Layer. base.Layer is ignored.
func Fanout(base Record, explicit Layer) []Record {
	if explicit != "" {
		base.Layer = explicit
		return []Record{base}
	}

	layers := Layers()
	records := make([]Record, len(layers))
	for i, layer := range layers {
		records[i] = base
		records[i].Layer = layer
	}
	return records
}
