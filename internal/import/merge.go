// Archivus - Scheduled Backup and Restore for Personal Record Stores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/archivus

package dataimport

// MergePriorityOrder merges the imported app ordering with the on-device
// ordering for a single category. The imported order is primary: its entries
// come first, preserving their relative order, followed by on-device-only
// entries in their original relative order. Duplicates within either side
// are dropped on first occurrence.
func MergePriorityOrder(imported, device []string) []string {
	merged := make([]string, 0, len(imported)+len(device))
	seen := make(map[string]bool, len(imported)+len(device))
	for _, id := range imported {
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	for _, id := range device {
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	return merged
}

// mergePriorityLists applies MergePriorityOrder per category over the union
// of categories present on either side.
func mergePriorityLists(imported, device map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(imported)+len(device))
	for category, order := range imported {
		merged[category] = MergePriorityOrder(order, device[category])
	}
	for category, order := range device {
		if _, ok := merged[category]; ok {
			continue
		}
		merged[category] = MergePriorityOrder(nil, order)
	}
	return merged
}
