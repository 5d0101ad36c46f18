package wifi

import (
	"os/exec"
	"strings"
)

// NMCLIStation is a Station backed by NetworkManager's nmcli tool, the usual
// association path on the single-board computers this controller targets.
type NMCLIStation struct {
	// Interface is the wireless interface name, e.g. "wlan0".
	Interface string
}

// Connect asks NetworkManager to associate with the network. nmcli blocks
// briefly but association may still be settling when it returns; the manager
// polls IsConnected for the outcome.
func (s *NMCLIStation) Connect(ssid, password string) error {
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if s.Interface != "" {
		args = append(args, "ifname", s.Interface)
	}
	return exec.Command("nmcli", args...).Run()
}

// IsConnected reports whether the wireless interface has an active connection.
func (s *NMCLIStation) IsConnected() bool {
	out, err := exec.Command("nmcli", "-t", "-f", "DEVICE,STATE", "device", "status").Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		if s.Interface != "" && fields[0] != s.Interface {
			continue
		}
		if fields[1] == "connected" {
			return true
		}
	}
	return false
}
