// Package gitops maintains the git-backed audit trail of device bindings.
package gitops

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/darkermage/quiz-buzzer-admin/internal/inventory"
	"github.com/darkermage/quiz-buzzer-admin/internal/reconcile"
)

// Exporter writes registry snapshots into an audit repository and commits
// them.
type Exporter struct {
	repo     *Repository
	repoPath string
	storage  *inventory.Storage
	logger   *zap.Logger
}

// ExportResult describes one completed export.
type ExportResult struct {
	CommitHash  string
	DeviceCount int
}

// NewExporter opens the audit repository at repoPath.
func NewExporter(repoPath string, logger *zap.Logger) (*Exporter, error) {
	repo, err := OpenRepository(repoPath)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		repo:     repo,
		repoPath: repoPath,
		storage:  inventory.NewStorage(repoPath),
		logger:   logger,
	}, nil
}

// Export writes the reconciled device list to the repository and commits the
// snapshot. It refuses to run over uncommitted changes so an export never
// destroys manual edits.
func (e *Exporter) Export(serverURL, roomCode string, entries []reconcile.Entry) (*ExportResult, error) {
	hasChanges, err := e.repo.HasChanges()
	if err != nil {
		return nil, fmt.Errorf("failed to check repository status: %w", err)
	}
	if hasChanges {
		return nil, fmt.Errorf("cannot export: working tree has uncommitted changes, commit or discard them first")
	}

	manifest, err := inventory.LoadManifest(e.repoPath + "/manifest.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	// Drop records for devices that no longer exist in the registry.
	current := make(map[string]bool, len(entries))
	for _, entry := range entries {
		current[entry.Device.MACAddress] = true
	}
	for _, record := range append([]inventory.DeviceRecord(nil), manifest.Devices...) {
		if !current[record.MACAddress] {
			manifest.RemoveDevice(record.MACAddress)
			if err := e.storage.RemoveDevice(record.MACAddress); err != nil {
				return nil, err
			}
		}
	}

	for _, entry := range entries {
		record := recordFromEntry(entry)
		manifest.AddDevice(record)
		if err := e.storage.SaveDevice(record); err != nil {
			return nil, err
		}
	}

	manifest.Version = "1.0"
	manifest.ServerURL = serverURL
	manifest.RoomCode = roomCode
	manifest.ExportedAt = time.Now().UTC()
	if err := manifest.Save(); err != nil {
		return nil, err
	}

	if err := e.repo.AddAll(); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Snapshot device registry: %d device(s), room %s", len(entries), roomCode)
	hash, err := e.repo.Commit(message)
	if err != nil {
		return nil, err
	}

	e.logger.Info("registry snapshot committed",
		zap.String("commit", hash),
		zap.Int("devices", len(entries)))

	return &ExportResult{
		CommitHash:  hash,
		DeviceCount: len(entries),
	}, nil
}

func recordFromEntry(entry reconcile.Entry) inventory.DeviceRecord {
	d := entry.Device
	return inventory.DeviceRecord{
		MACAddress: d.MACAddress,
		ButtonID:   d.ButtonID,
		Name:       d.Name,
		Active:     d.IsActive,
		Binding:    string(entry.Binding),
		RoomCode:   d.RoomCode,
		TeamID:     d.TeamID,
		TeamName:   entry.TeamName,
		PressCount: d.PressCount,
		LastPress:  d.LastPress,
	}
}
