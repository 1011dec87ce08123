package deploy

import (
	"testing"

	"github.com/artpar/challrun/internal/core/challenge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// PlanContainer Tests
// =============================================================================

func planConfig() *challenge.Config {
	return &challenge.Config{Title: "Pwn Me", ChallengeID: "c1"}
}

func TestPlanContainer_AllocatesSequentialPorts(t *testing.T) {
	cfg := planConfig()
	alloc := NewPortAllocator()

	ctr := challenge.Container{
		Image: "./web",
		Services: []challenge.Service{
			{Type: "tcp", InternalPort: 4000},
			{Type: "tcp", InternalPort: 4001},
			{Type: "website", InternalPort: 80},
		},
	}

	plan, err := PlanContainer(cfg, "web", ctr, alloc)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{4000: 50000, 4001: 50001, 80: 50002}, plan.Ports)
	assert.Equal(t, []string{
		"nc 127.0.0.1 50000",
		"nc 127.0.0.1 50001",
		"http://127.0.0.1:50002",
	}, plan.ServiceStrings)
}

func TestPlanContainer_ExplicitPortSkipsAllocator(t *testing.T) {
	cfg := planConfig()
	alloc := NewPortAllocator()

	ctr := challenge.Container{
		Services: []challenge.Service{
			{Type: "tcp", InternalPort: 4000},
			{Type: "tcp", InternalPort: 4001, ExternalPort: 12345},
			{Type: "tcp", InternalPort: 4002},
		},
	}

	plan, err := PlanContainer(cfg, "web", ctr, alloc)
	require.NoError(t, err)

	// The explicit port is untouched and does not perturb the cursor.
	assert.Equal(t, map[int]int{4000: 50000, 4001: 12345, 4002: 50001}, plan.Ports)
}

func TestPlanContainer_SharedAllocatorAcrossContainers(t *testing.T) {
	cfg := planConfig()
	alloc := NewPortAllocator()

	first, err := PlanContainer(cfg, "web", challenge.Container{
		Services: []challenge.Service{{Type: "tcp", InternalPort: 4000}},
	}, alloc)
	require.NoError(t, err)

	second, err := PlanContainer(cfg, "db", challenge.Container{
		Services: []challenge.Service{{Type: "tcp", InternalPort: 5432}},
	}, alloc)
	require.NoError(t, err)

	assert.Equal(t, 50000, first.Ports[4000])
	assert.Equal(t, 50001, second.Ports[5432])
}

func TestPlanContainer_ExtraExposedPorts(t *testing.T) {
	cfg := planConfig()
	alloc := NewPortAllocator()

	ctr := challenge.Container{
		Services: []challenge.Service{{Type: "tcp", InternalPort: 4000}},
		ExtraExposedPorts: []challenge.ExtraPort{
			{InternalPort: 9229, ExternalPort: 9229},
		},
	}

	plan, err := PlanContainer(cfg, "web", ctr, alloc)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{4000: 50000, 9229: 9229}, plan.Ports)
	// Extra ports produce no service string.
	assert.Len(t, plan.ServiceStrings, 1)
}

func TestPlanContainer_DerivedTag(t *testing.T) {
	cfg := planConfig()
	plan, err := PlanContainer(cfg, "web", challenge.Container{}, NewPortAllocator())
	require.NoError(t, err)

	assert.Equal(t, challenge.DockerName("Pwn Me", "web", "c1"), plan.Tag)
}

func TestPlanContainer_UnknownServiceType(t *testing.T) {
	cfg := planConfig()
	_, err := PlanContainer(cfg, "web", challenge.Container{
		Services: []challenge.Service{{Type: "gopher", InternalPort: 70}},
	}, NewPortAllocator())

	assert.ErrorIs(t, err, challenge.ErrUnknownServiceType)
}
