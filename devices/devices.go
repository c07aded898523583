// Package devices picks the physical device a program runs on.
package devices

import (
	"errors"
	"fmt"
	"strings"

	"vulkan-bootstrap/queues"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoDevicesEnumerated is returned when the runtime reports no devices.
	ErrNoDevicesEnumerated = errors.New("failed to find GPUs with Vulkan support")

	// ErrNoSuitableDevice is returned when none of the devices is suitable.
	ErrNoSuitableDevice = errors.New("failed to find suitable physical devices")
)

// Pick returns the first of candidates for which suitable returns true.
// Candidates are checked in the order they were enumerated and no ranking
// takes place.
func Pick[D any](candidates []D, suitable func(D) bool) (D, error) {
	var none D

	if len(candidates) == 0 {
		return none, ErrNoDevicesEnumerated
	}

	for _, device := range candidates {
		if suitable(device) {
			return device, nil
		}
	}

	return none, ErrNoSuitableDevice
}

// Policy decides which queue families a device must have to be suitable.
type Policy int

const (
	// PolicyGraphicsAndPresent requires both a graphics and a present family.
	PolicyGraphicsAndPresent Policy = iota

	// PolicyGraphicsOnly requires only a graphics family. Programs which do
	// not draw to a surface use it.
	PolicyGraphicsOnly
)

// Accepts returns true if indices satisfy the policy.
func (p Policy) Accepts(indices queues.FamilyIndices) bool {
	switch p {
	case PolicyGraphicsOnly:
		return indices.HasGraphics()
	default:
		return indices.IsComplete()
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyGraphicsAndPresent:
		return "graphics+present"
	case PolicyGraphicsOnly:
		return "graphics"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts the textual form of a policy, as returned by
// Policy.String, into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "graphics+present", "graphics-and-present":
		return PolicyGraphicsAndPresent, nil
	case "graphics", "graphics-only":
		return PolicyGraphicsOnly, nil
	default:
		return PolicyGraphicsAndPresent, fmt.Errorf("unknown device policy %q", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Policy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	policy, err := ParsePolicy(s)
	if err != nil {
		return err
	}

	*p = policy
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Policy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// Suitable returns a predicate for Pick which selects the queue families of
// a device with familiesOf and checks them against the policy.
func Suitable[D any](
	policy Policy,
	familiesOf func(D) queues.FamilyIndices,
) func(D) bool {
	return func(device D) bool {
		return policy.Accepts(familiesOf(device))
	}
}
