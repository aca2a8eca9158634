package registry

import "time"

// Device represents a physical hardware buzzer known to the device registry.
// The registry is the sole source of truth; RoomCode and TeamID are set
// together or both absent.
type Device struct {
	ID         string     `json:"id,omitempty"`
	MACAddress string     `json:"macAddress"`
	ButtonID   string     `json:"buttonId"`
	Name       string     `json:"name,omitempty"`
	IsActive   bool       `json:"isActive"`
	RoomCode   string     `json:"roomCode,omitempty"`
	TeamID     string     `json:"teamId,omitempty"`
	TeamName   string     `json:"teamName,omitempty"`
	PressCount int        `json:"pressCount"`
	LastPress  *time.Time `json:"lastPress,omitempty"`
}

// Assigned reports whether the device is currently bound into a game room.
func (d *Device) Assigned() bool {
	return d.RoomCode != ""
}

// Team represents a team as the quiz server exposes it to the admin view.
// Teams are scoped to exactly one room and owned by the server.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PressResult is the server's response to a simulated button press.
type PressResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Processed bool   `json:"processed"`
}
