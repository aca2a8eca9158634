package registry

import (
	"encoding/json"
	"sort"
	"strconv"
)

// NormalizeDevices converts a device-list response body into a flat slice.
// The registry has been observed to answer with a JSON array, a single device
// object, or a map keyed by arbitrary strings (numeric-looking keys included).
// All three shapes normalize to one ordered slice; numeric keys are ordered
// numerically, other keys lexically, so equivalent payloads normalize
// identically. Malformed or empty input yields an empty slice, never an error.
func NormalizeDevices(raw json.RawMessage) []Device {
	if len(raw) == 0 {
		return []Device{}
	}

	var list []Device
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			return []Device{}
		}
		return list
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return []Device{}
	}

	// A single device object carries macAddress or id at the top level.
	if hasStringField(obj, "macAddress") || hasStringField(obj, "id") {
		var d Device
		if err := json.Unmarshal(raw, &d); err == nil && (d.MACAddress != "" || d.ID != "") {
			return []Device{d}
		}
		return []Device{}
	}

	// Keyed collection: decode each value that looks like a device.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sortDeviceKeys(keys)

	devices := make([]Device, 0, len(keys))
	for _, k := range keys {
		var d Device
		if err := json.Unmarshal(obj[k], &d); err != nil {
			continue
		}
		if d.MACAddress == "" && d.ID == "" {
			continue
		}
		devices = append(devices, d)
	}
	return devices
}

func hasStringField(obj map[string]json.RawMessage, field string) bool {
	v, ok := obj[field]
	if !ok {
		return false
	}
	var s string
	return json.Unmarshal(v, &s) == nil && s != ""
}

// sortDeviceKeys orders keys numerically when every key parses as an integer,
// lexically otherwise.
func sortDeviceKeys(keys []string) {
	numeric := true
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
			break
		}
	}

	if numeric {
		sort.Slice(keys, func(i, j int) bool {
			ni, _ := strconv.Atoi(keys[i])
			nj, _ := strconv.Atoi(keys[j])
			return ni < nj
		})
		return
	}
	sort.Strings(keys)
}
