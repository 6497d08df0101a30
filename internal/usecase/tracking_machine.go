package usecase

import (
	"github.com/landmark-guide/internal/domain"
)

// TrackingCommand is a side effect the machine asks its owner to perform.
// The machine itself never blocks; permission answers come back later as
// events.
type TrackingCommand int

const (
	CmdRequestForeground TrackingCommand = iota
	CmdRequestBackground
	CmdAcquireForeground
	CmdAcquireBackground
	CmdStopAcquisition
)

func (c TrackingCommand) String() string {
	switch c {
	case CmdRequestForeground:
		return "request_foreground"
	case CmdRequestBackground:
		return "request_background"
	case CmdAcquireForeground:
		return "acquire_foreground"
	case CmdAcquireBackground:
		return "acquire_background"
	case CmdStopAcquisition:
		return "stop_acquisition"
	default:
		return "unknown"
	}
}

// TrackingStatus is a copy of the machine's observable fields.
type TrackingStatus struct {
	State            domain.TrackingState
	Mode             domain.Mode
	Tier             domain.ProximityTier
	TierKnown        bool
	Foreground       domain.PermissionStatus
	Background       domain.PermissionStatus
	Acquiring        domain.TrackingState
	PermissionDenied bool
}

// TrackingMachine owns the acquisition intensity. Every method is a
// synchronous in-memory transition returning the commands to run; repeating
// an event yields no duplicate commands.
type TrackingMachine struct {
	state     domain.TrackingState
	mode      domain.Mode
	tier      domain.ProximityTier
	tierKnown bool

	foreground domain.PermissionStatus
	background domain.PermissionStatus

	// what the provider was last told to do; Inactive means stopped
	acquiring domain.TrackingState

	permissionDenied bool
}

func NewTrackingMachine() *TrackingMachine {
	return &TrackingMachine{
		state:     domain.TrackingInactive,
		mode:      domain.ModeVirtualTour,
		acquiring: domain.TrackingInactive,
	}
}

func (m *TrackingMachine) State() domain.TrackingState {
	return m.state
}

func (m *TrackingMachine) Mode() domain.Mode {
	return m.mode
}

func (m *TrackingMachine) Status() TrackingStatus {
	return TrackingStatus{
		State:            m.state,
		Mode:             m.mode,
		Tier:             m.tier,
		TierKnown:        m.tierKnown,
		Foreground:       m.foreground,
		Background:       m.background,
		Acquiring:        m.acquiring,
		PermissionDenied: m.permissionDenied,
	}
}

// SetMode handles a mode toggle. Switching to Adventure re-attempts
// permissions that were denied earlier.
func (m *TrackingMachine) SetMode(mode domain.Mode) []TrackingCommand {
	if mode != domain.ModeAdventure {
		m.mode = domain.ModeVirtualTour
		return m.toInactive(false)
	}

	if m.mode == domain.ModeAdventure && m.state != domain.TrackingInactive {
		return nil
	}

	m.mode = domain.ModeAdventure
	m.permissionDenied = false
	m.state = domain.TrackingForegroundOnly
	if m.foreground == domain.PermissionDenied {
		m.foreground = domain.PermissionUnknown
	}
	if m.background == domain.PermissionDenied {
		m.background = domain.PermissionUnknown
	}

	var cmds []TrackingCommand
	switch m.foreground {
	case domain.PermissionGranted:
		cmds = append(cmds, m.acquire(domain.TrackingForegroundOnly)...)
		cmds = append(cmds, m.escalate()...)
	case domain.PermissionUnknown:
		m.foreground = domain.PermissionPending
		cmds = append(cmds, CmdRequestForeground)
	}
	return cmds
}

// ObserveTier feeds the tier of an accepted fix.
func (m *TrackingMachine) ObserveTier(tier domain.ProximityTier) []TrackingCommand {
	m.tier = tier
	m.tierKnown = true

	if m.mode != domain.ModeAdventure {
		return nil
	}

	switch m.state {
	case domain.TrackingForegroundOnly:
		return m.escalate()
	case domain.TrackingBackground:
		if tier == domain.TierFar {
			m.state = domain.TrackingForegroundOnly
			return m.acquire(domain.TrackingForegroundOnly)
		}
	}
	return nil
}

// PermissionResult delivers the eventual answer to a permission request.
func (m *TrackingMachine) PermissionResult(kind domain.PermissionKind, granted bool) []TrackingCommand {
	if kind == domain.PermissionForeground {
		if !granted {
			m.foreground = domain.PermissionDenied
			if m.mode != domain.ModeAdventure {
				return nil
			}
			return m.toInactive(true)
		}

		m.foreground = domain.PermissionGranted
		if m.mode != domain.ModeAdventure {
			return nil
		}
		if m.state == domain.TrackingInactive {
			m.state = domain.TrackingForegroundOnly
			m.permissionDenied = false
		}
		if m.state == domain.TrackingBackground {
			return nil
		}
		cmds := m.acquire(domain.TrackingForegroundOnly)
		return append(cmds, m.escalate()...)
	}

	if !granted {
		// stay foreground-only; not re-prompted until the next mode toggle
		m.background = domain.PermissionDenied
		return nil
	}

	m.background = domain.PermissionGranted
	if m.mode == domain.ModeAdventure && m.state == domain.TrackingForegroundOnly {
		return m.escalate()
	}
	return nil
}

// PermissionAbandoned is used when a prompt produced no answer; the next
// triggering event may prompt again.
func (m *TrackingMachine) PermissionAbandoned(kind domain.PermissionKind) {
	if kind == domain.PermissionForeground {
		if m.foreground == domain.PermissionPending {
			m.foreground = domain.PermissionUnknown
		}
		return
	}
	if m.background == domain.PermissionPending {
		m.background = domain.PermissionUnknown
	}
}

// Revoke handles a permission withdrawn from outside the app.
func (m *TrackingMachine) Revoke(kind domain.PermissionKind) []TrackingCommand {
	if kind == domain.PermissionForeground {
		m.foreground = domain.PermissionDenied
		m.background = domain.PermissionDenied
	} else {
		m.background = domain.PermissionDenied
	}
	if m.mode != domain.ModeAdventure {
		return nil
	}
	return m.toInactive(true)
}

// escalate moves ForegroundOnly to Background once the user is near the
// zone, prompting for the elevated permission at most once.
func (m *TrackingMachine) escalate() []TrackingCommand {
	if m.state != domain.TrackingForegroundOnly || !m.tierKnown || m.tier == domain.TierFar {
		return nil
	}
	if m.foreground != domain.PermissionGranted {
		return nil
	}

	switch m.background {
	case domain.PermissionGranted:
		m.state = domain.TrackingBackground
		return m.acquire(domain.TrackingBackground)
	case domain.PermissionUnknown:
		m.background = domain.PermissionPending
		return []TrackingCommand{CmdRequestBackground}
	}
	return nil
}

func (m *TrackingMachine) acquire(target domain.TrackingState) []TrackingCommand {
	if m.acquiring == target {
		return nil
	}
	m.acquiring = target
	if target == domain.TrackingBackground {
		return []TrackingCommand{CmdAcquireBackground}
	}
	return []TrackingCommand{CmdAcquireForeground}
}

func (m *TrackingMachine) toInactive(denied bool) []TrackingCommand {
	m.state = domain.TrackingInactive
	m.permissionDenied = denied
	if m.acquiring == domain.TrackingInactive {
		return nil
	}
	m.acquiring = domain.TrackingInactive
	return []TrackingCommand{CmdStopAcquisition}
}
