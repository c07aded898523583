package devices

import (
	"testing"

	"vulkan-bootstrap/queues"

	"github.com/onsi/gomega"
	"gopkg.in/yaml.v3"
)

func TestPick(t *testing.T) {
	suitable := map[string]bool{}
	isSuitable := func(d string) bool { return suitable[d] }

	tests := []struct {
		name      string
		devices   []string
		suitable  []string
		expected  string
		expectErr error
	}{
		{
			name:      "no devices enumerated",
			devices:   nil,
			expectErr: ErrNoDevicesEnumerated,
		},
		{
			name:     "skips unsuitable first device",
			devices:  []string{"d1", "d2"},
			suitable: []string{"d2"},
			expected: "d2",
		},
		{
			name:     "first suitable device wins",
			devices:  []string{"d1", "d2"},
			suitable: []string{"d1", "d2"},
			expected: "d1",
		},
		{
			name:      "no suitable device",
			devices:   []string{"d1", "d2"},
			expectErr: ErrNoSuitableDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)

			clear(suitable)
			for _, d := range tt.suitable {
				suitable[d] = true
			}

			device, err := Pick(tt.devices, isSuitable)
			if tt.expectErr != nil {
				g.Expect(err).To(gomega.MatchError(tt.expectErr))
				g.Expect(device).To(gomega.BeEmpty())
				return
			}

			g.Expect(err).NotTo(gomega.HaveOccurred())
			g.Expect(device).To(gomega.Equal(tt.expected))
		})
	}
}

func TestPickStopsAtFirstMatch(t *testing.T) {
	g := gomega.NewWithT(t)

	var checked []int
	device, err := Pick([]int{7, 8, 9}, func(d int) bool {
		checked = append(checked, d)
		return d >= 8
	})

	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(device).To(gomega.Equal(8))
	g.Expect(checked).To(gomega.Equal([]int{7, 8}))
}

func graphicsOnly(index uint32) queues.FamilyIndices {
	indices := queues.FamilyIndices{}
	indices.Graphics.Set(index)
	return indices
}

func complete(graphics, present uint32) queues.FamilyIndices {
	indices := graphicsOnly(graphics)
	indices.Present.Set(present)
	return indices
}

func TestPolicyAccepts(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(PolicyGraphicsAndPresent.Accepts(complete(0, 1))).To(gomega.BeTrue())
	g.Expect(PolicyGraphicsAndPresent.Accepts(graphicsOnly(0))).To(gomega.BeFalse())
	g.Expect(PolicyGraphicsOnly.Accepts(graphicsOnly(0))).To(gomega.BeTrue())
	g.Expect(PolicyGraphicsOnly.Accepts(queues.FamilyIndices{})).To(gomega.BeFalse())

	presentOnly := queues.FamilyIndices{}
	presentOnly.Present.Set(0)
	g.Expect(PolicyGraphicsOnly.Accepts(presentOnly)).To(gomega.BeFalse())
	g.Expect(PolicyGraphicsAndPresent.Accepts(presentOnly)).To(gomega.BeFalse())
}

func TestSuitableWithPolicy(t *testing.T) {
	g := gomega.NewWithT(t)

	families := map[string]queues.FamilyIndices{
		"integrated": graphicsOnly(0),
		"discrete":   complete(0, 0),
	}
	familiesOf := func(d string) queues.FamilyIndices { return families[d] }
	candidates := []string{"integrated", "discrete"}

	device, err := Pick(candidates, Suitable(PolicyGraphicsAndPresent, familiesOf))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(device).To(gomega.Equal("discrete"))

	device, err = Pick(candidates, Suitable(PolicyGraphicsOnly, familiesOf))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(device).To(gomega.Equal("integrated"))
}

func TestParsePolicy(t *testing.T) {
	g := gomega.NewWithT(t)

	for _, p := range []Policy{PolicyGraphicsAndPresent, PolicyGraphicsOnly} {
		parsed, err := ParsePolicy(p.String())
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(parsed).To(gomega.Equal(p))
	}

	parsed, err := ParsePolicy("")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(parsed).To(gomega.Equal(PolicyGraphicsAndPresent))

	_, err = ParsePolicy("compute")
	g.Expect(err).To(gomega.HaveOccurred())
}

func TestPolicyYAML(t *testing.T) {
	g := gomega.NewWithT(t)

	var out struct {
		Policy Policy `yaml:"policy"`
	}
	g.Expect(yaml.Unmarshal([]byte("policy: graphics\n"), &out)).To(gomega.Succeed())
	g.Expect(out.Policy).To(gomega.Equal(PolicyGraphicsOnly))

	g.Expect(yaml.Unmarshal([]byte("policy: nope\n"), &out)).NotTo(gomega.Succeed())

	data, err := yaml.Marshal(out)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(string(data)).To(gomega.Equal("policy: graphics\n"))
}
