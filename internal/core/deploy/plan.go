package deploy

import (
	"fmt"
	"strconv"

	"github.com/artpar/challrun/internal/core/challenge"
)

// =============================================================================
// Container Plan Building Functions
// =============================================================================

// LoopbackHost is the host players are pointed at for locally started
// challenges.
const LoopbackHost = "127.0.0.1"

// ContainerPlan is everything the shell needs to create and start one
// challenge container.
type ContainerPlan struct {
	// Name is the declared container name from the deployment.
	Name string
	// Tag is the derived image tag the container runs from.
	Tag string
	// Ports maps internal container ports to host ports. Allocator-assigned
	// and explicit service ports plus extra_exposed_ports all end up here.
	Ports map[int]int
	// ServiceStrings are the player-facing connection strings for this
	// container's services, in declared order.
	ServiceStrings []string
}

// PlanContainer resolves one container's ports and service strings. Services
// without an explicit external port draw from alloc in declared order; the
// assignment lives only in the returned plan, never in cfg.
func PlanContainer(cfg *challenge.Config, name string, ctr challenge.Container, alloc *PortAllocator) (ContainerPlan, error) {
	plan := ContainerPlan{
		Name:  name,
		Tag:   challenge.DockerName(cfg.Title, name, cfg.ChallengeID),
		Ports: make(map[int]int, len(ctr.Services)+len(ctr.ExtraExposedPorts)),
	}

	for _, svc := range ctr.Services {
		external := svc.ExternalPort
		if external == 0 {
			external = alloc.Next()
		}
		plan.Ports[svc.InternalPort] = external

		display, err := challenge.FormatUserService(cfg, svc.Type, map[string]string{
			"host": LoopbackHost,
			"port": strconv.Itoa(external),
			"url":  fmt.Sprintf("http://%s:%d", LoopbackHost, external),
		})
		if err != nil {
			return ContainerPlan{}, fmt.Errorf("container %s: %w", name, err)
		}
		plan.ServiceStrings = append(plan.ServiceStrings, display)
	}

	// Extra exposed ports always carry an explicit external port and never
	// touch the allocator.
	for _, extra := range ctr.ExtraExposedPorts {
		plan.Ports[extra.InternalPort] = extra.ExternalPort
	}

	return plan, nil
}
