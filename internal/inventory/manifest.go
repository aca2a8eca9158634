// Package inventory writes point-in-time snapshots of the device registry
// into a local audit repository: a root manifest plus one YAML file per
// device, diffable across exports.
package inventory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the root manifest of an audit repository.
type Manifest struct {
	Version    string         `yaml:"version"`
	ServerURL  string         `yaml:"server_url,omitempty"`
	RoomCode   string         `yaml:"room_code,omitempty"`
	ExportedAt time.Time      `yaml:"exported_at"`
	Devices    []DeviceRecord `yaml:"devices"`
	filePath   string
}

// DeviceRecord is one device's binding state as captured at export time.
type DeviceRecord struct {
	MACAddress string     `yaml:"mac_address"`
	ButtonID   string     `yaml:"button_id"`
	Name       string     `yaml:"name,omitempty"`
	Active     bool       `yaml:"active"`
	Binding    string     `yaml:"binding"`
	RoomCode   string     `yaml:"room_code,omitempty"`
	TeamID     string     `yaml:"team_id,omitempty"`
	TeamName   string     `yaml:"team_name,omitempty"`
	PressCount int        `yaml:"press_count"`
	LastPress  *time.Time `yaml:"last_press,omitempty"`
}

// LoadManifest loads a manifest from a YAML file. A missing file yields an
// empty manifest bound to that path.
func LoadManifest(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{
				Version:  "1.0",
				Devices:  []DeviceRecord{},
				filePath: filePath,
			}, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	manifest.filePath = filePath
	return &manifest, nil
}

// Save saves the manifest to its file.
func (m *Manifest) Save() error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(m.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// AddDevice adds a record to the manifest, replacing any existing record with
// the same MAC address.
func (m *Manifest) AddDevice(record DeviceRecord) {
	for i, d := range m.Devices {
		if d.MACAddress == record.MACAddress {
			m.Devices[i] = record
			return
		}
	}
	m.Devices = append(m.Devices, record)
}

// RemoveDevice removes a record by MAC address.
func (m *Manifest) RemoveDevice(macAddress string) bool {
	for i, d := range m.Devices {
		if d.MACAddress == macAddress {
			m.Devices = append(m.Devices[:i], m.Devices[i+1:]...)
			return true
		}
	}
	return false
}

// GetDevice retrieves a record by MAC address.
func (m *Manifest) GetDevice(macAddress string) *DeviceRecord {
	for _, d := range m.Devices {
		if d.MACAddress == macAddress {
			return &d
		}
	}
	return nil
}
