package tui

import (
	"fmt"
	"strconv"
	"strings"

	"tunbridge/internal/config"
)

// PromptForSession interactively builds a Session when tunbridge is
// invoked with no command-line arguments, the zero-arg fallback
// spec.md §6 carries forward from the teacher's own interactive entry
// point.
func PromptForSession() (config.Session, error) {
	mode, err := runSelector("Select tunnel mode:", []string{"l3 (IP)", "l2 (Ethernet)"})
	if err != nil {
		return config.Session{}, err
	}
	transferMode, err := runSelector("Select transfer mode:", []string{"stdio", "server", "client"})
	if err != nil {
		return config.Session{}, err
	}

	s := config.Session{
		Mode:         mustMode(mode),
		Role:         mustRole(transferMode),
		MaxFrameSize: config.DefaultMaxFrameSize,
	}

	if s.Role != config.RoleStdio {
		s.PeerPort = config.DefaultPort
		addr, err := runInputPrompt("Peer address:", "")
		if err != nil {
			return config.Session{}, err
		}
		s.PeerAddress = strings.TrimSpace(addr)

		portStr, err := runInputPrompt("Port:", strconv.Itoa(config.DefaultPort))
		if err != nil {
			return config.Session{}, err
		}
		portStr = strings.TrimSpace(portStr)
		if portStr != "" {
			p, err := strconv.Atoi(portStr)
			if err != nil {
				return config.Session{}, fmt.Errorf("tui: invalid port %q: %w", portStr, err)
			}
			s.PeerPort = p
		}
	}

	if err := s.Validate(); err != nil {
		return config.Session{}, err
	}
	return s, nil
}

func mustMode(s string) config.InterfaceMode {
	if s == "l2" {
		return config.ModeL2
	}
	return config.ModeL3
}

func mustRole(s string) config.TransportRole {
	switch s {
	case "server":
		return config.RoleListening
	case "client":
		return config.RoleConnecting
	default:
		return config.RoleStdio
	}
}
