package queues

import (
	"log/slog"
	"sort"

	"vulkan-bootstrap/optional"

	vk "github.com/vulkan-go/vulkan"
)

// Family describes one queue family of a physical device.
type Family struct {
	// Index is the position of the family in the list reported by the device.
	Index uint32

	// Flags are the capabilities of the queues in this family.
	Flags vk.QueueFlags

	// Count is the number of queues in the family.
	Count uint32
}

// SupportsGraphics returns true if the family can run graphics commands.
func (f Family) SupportsGraphics() bool {
	return f.Flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

// PresentFunc reports whether the queue family at index can present to the
// program's surface.
type PresentFunc func(index uint32) (bool, error)

// FamilyIndices holds the indexes of Vulkan queue families needed by the programs.
type FamilyIndices struct {

	// Graphics is the index of the graphics queue family.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting to the drawing
	// surface.
	Present optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}

// HasGraphics returns true if a graphics family has been found.
func (f *FamilyIndices) HasGraphics() bool {
	return f.Graphics.HasValue()
}

// UniqueIndices returns the distinct family indexes which have been set, in
// ascending order. A logical device needs exactly one queue create info for
// each of them.
func (f *FamilyIndices) UniqueIndices() []uint32 {
	seen := make(map[uint32]struct{}, 2)
	if f.Graphics.HasValue() {
		seen[f.Graphics.Get()] = struct{}{}
	}
	if f.Present.HasValue() {
		seen[f.Present.Get()] = struct{}{}
	}

	unique := make([]uint32, 0, len(seen))
	for index := range seen {
		unique = append(unique, index)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	return unique
}

// Select scans families in order and records the first graphics capable
// family and the first family for which present returns true. It stops as soon
// as both are found. A nil present never fills the Present index.
//
// An error from present is logged and the family is treated as unable to
// present.
func Select(families []Family, present PresentFunc) FamilyIndices {
	indices := FamilyIndices{}

	for i, family := range families {
		index := uint32(i)

		if !indices.Graphics.HasValue() && family.SupportsGraphics() {
			indices.Graphics.Set(index)
		}

		if !indices.Present.HasValue() && present != nil {
			hasPresent, err := present(index)
			if err != nil {
				slog.Warn("Querying surface support for queue family failed",
					"index", index,
					"error", err,
				)
			} else if hasPresent {
				indices.Present.Set(index)
			}
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices
}
