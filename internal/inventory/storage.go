package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// devicesDir is where per-device files live inside the audit repository.
const devicesDir = "devices"

// Storage handles the per-device files of an audit repository.
type Storage struct {
	repoPath string
}

// NewStorage creates a storage handler rooted at repoPath.
func NewStorage(repoPath string) *Storage {
	return &Storage{
		repoPath: repoPath,
	}
}

// DeviceFileName maps a MAC address to its file name: "AA:BB:CC:DD:EE:01"
// becomes "aa-bb-cc-dd-ee-01.yaml".
func DeviceFileName(macAddress string) string {
	name := strings.ToLower(strings.ReplaceAll(macAddress, ":", "-"))
	return name + ".yaml"
}

// SaveDevice writes one device record under devices/.
func (s *Storage) SaveDevice(record DeviceRecord) error {
	dir := filepath.Join(s.repoPath, devicesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create devices directory: %w", err)
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal device: %w", err)
	}

	path := filepath.Join(dir, DeviceFileName(record.MACAddress))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write device: %w", err)
	}

	return nil
}

// LoadDevice reads one device record by MAC address.
func (s *Storage) LoadDevice(macAddress string) (*DeviceRecord, error) {
	path := filepath.Join(s.repoPath, devicesDir, DeviceFileName(macAddress))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device: %w", err)
	}

	var record DeviceRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device: %w", err)
	}

	return &record, nil
}

// ListDevices loads every device record in the repository.
func (s *Storage) ListDevices() ([]DeviceRecord, error) {
	dir := filepath.Join(s.repoPath, devicesDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read devices directory: %w", err)
	}

	var records []DeviceRecord
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		var record DeviceRecord
		if err := yaml.Unmarshal(data, &record); err != nil {
			continue
		}

		records = append(records, record)
	}

	return records, nil
}

// RemoveDevice deletes a device file. Removing a file that does not exist is
// not an error.
func (s *Storage) RemoveDevice(macAddress string) error {
	path := filepath.Join(s.repoPath, devicesDir, DeviceFileName(macAddress))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove device: %w", err)
	}
	return nil
}
