package components

import (
	"fmt"
	"strings"
)

// String returns the display name for a Capability.
func (c Capability) String() string {
	names := CapabilityNames()
	if int(c) < len(names) {
		return names[c]
	}
	return "Unknown"
}

// CapabilityNames returns the display names for all capabilities.
// The order matches the Capability constants.
func CapabilityNames() []string {
	return []string{"Core", "Generation", "Storage", "Propulsion", "Shield", "Weapon", "Armor"}
}

// ParseCapability maps a layout name (case-insensitive) to a Capability.
func ParseCapability(name string) (Capability, error) {
	for i, n := range CapabilityNames() {
		if strings.EqualFold(n, name) {
			return Capability(i), nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// MarshalText encodes the capability by name for YAML and CSV.
func (c Capability) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown capability %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a capability name.
func (c *Capability) UnmarshalText(text []byte) error {
	v, err := ParseCapability(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// String returns the display name for an Alignment.
func (a Alignment) String() string {
	if a == Friend {
		return "Friend"
	}
	return "Foe"
}

// MarshalText encodes the alignment by name.
func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(a.String())), nil
}

// UnmarshalText decodes "friend" or "foe".
func (a *Alignment) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "friend":
		*a = Friend
	case "foe":
		*a = Foe
	default:
		return fmt.Errorf("unknown alignment %q", text)
	}
	return nil
}
