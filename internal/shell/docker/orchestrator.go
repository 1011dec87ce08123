package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/artpar/challrun/internal/core/challenge"
	"github.com/artpar/challrun/internal/core/deploy"
	"github.com/docker/docker/pkg/stdcopy"
)

// =============================================================================
// Orchestrator - Challenge Build and Start
// =============================================================================

// StartedContainer is the handle for a container the orchestrator started.
type StartedContainer struct {
	ID   string
	Name string
}

// Orchestrator drives the build and start phases for a single challenge
// against the container engine. It connects lazily: an invocation with
// nothing to do never dials the engine.
//
// The engine is shared, externally-mutable state; the orchestrator performs
// no locking and assumes one build-or-start invocation per challenge at a
// time. On failure, resources created by earlier steps are left in place for
// operator inspection.
type Orchestrator struct {
	connect ConnectFunc
	client  Client
	logger  *slog.Logger
	out     io.Writer
}

// NewOrchestrator creates a new orchestrator. out receives build logs and
// build script output.
func NewOrchestrator(connect ConnectFunc, logger *slog.Logger, out io.Writer) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Orchestrator{
		connect: connect,
		logger:  logger,
		out:     out,
	}
}

// Close releases the engine connection, if one was ever dialed.
func (o *Orchestrator) Close() error {
	if o.client == nil {
		return nil
	}
	cli := o.client
	o.client = nil
	return cli.Close()
}

// engine returns the cached engine client, dialing on first use.
func (o *Orchestrator) engine() (Client, error) {
	if o.client != nil {
		return o.client, nil
	}
	cli, err := o.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}
	o.client = cli
	return cli, nil
}

// =============================================================================
// Build Phase
// =============================================================================

// Build runs the build script and builds all challenge and solution images,
// creating missing networks and volumes along the way. It returns false when
// the configuration declared nothing to build.
func (o *Orchestrator) Build(ctx context.Context, cfg *challenge.Config) (bool, error) {
	didWork := false

	if cfg.Deployment != nil {
		if cfg.Deployment.Type != challenge.DeploymentTypeDocker {
			return false, NewEngineError("Build", "deployment", cfg.Deployment.Type,
				`only the "docker" deployment type is supported`, ErrUnsupportedDeployment)
		}
		if _, err := o.engine(); err != nil {
			return false, err
		}
	}

	var flag string
	if cfg.BuildScript() != "" || cfg.Deployment != nil {
		flag = challenge.FirstTextFlag(cfg)
		if flag != "" {
			o.logger.Info("using flag", "flag", flag)
		}
	}

	if script := cfg.BuildScript(); script != "" {
		if err := o.runBuildScript(ctx, script, flag); err != nil {
			return false, err
		}
		didWork = true
	}

	if cfg.Deployment != nil {
		if err := o.buildDeployment(ctx, cfg); err != nil {
			return false, err
		}
		didWork = true
	}

	if cfg.SolutionImage != "" {
		o.logger.Info("processing solution image")
		tag := challenge.SolutionTag(cfg.Title, cfg.ChallengeID)
		if err := o.buildImage(ctx, cfg.SolutionImage, tag); err != nil {
			return false, err
		}
		didWork = true
	}

	return didWork, nil
}

// runBuildScript executes the configured build script as a subprocess with
// the flag as its sole argument, forwarding its output. A non-zero exit is
// fatal.
func (o *Orchestrator) runBuildScript(ctx context.Context, script, flag string) error {
	path, err := filepath.Abs(script)
	if err != nil {
		return NewEngineError("Build", "script", script, err.Error(), ErrBuildScriptFailed)
	}

	o.logger.Info("running build script", "script", path)

	cmd := exec.CommandContext(ctx, path, flag)
	cmd.Stdout = o.out
	cmd.Stderr = o.out

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return NewEngineError("Build", "script", script,
				fmt.Sprintf("build script exited with code %d", exitErr.ExitCode()), ErrBuildScriptFailed)
		}
		return NewEngineError("Build", "script", script, err.Error(), ErrBuildScriptFailed)
	}
	return nil
}

// buildDeployment builds every declared container image in declaration
// order, then creates the networks and volumes that do not exist yet.
func (o *Orchestrator) buildDeployment(ctx context.Context, cfg *challenge.Config) error {
	cli, err := o.engine()
	if err != nil {
		return err
	}

	for _, def := range cfg.Deployment.Containers {
		o.logger.Info("processing container", "container", def.Name)
		tag := challenge.DockerName(cfg.Title, def.Name, cfg.ChallengeID)
		if err := o.buildImage(ctx, def.Container.Image, tag); err != nil {
			return err
		}
	}

	// Point-in-time existence checks; concurrent invocations can race here.
	existing, err := cli.ListNetworks()
	if err != nil {
		return err
	}
	for _, net := range cfg.Deployment.Networks {
		if contains(existing, net.Name) {
			continue
		}
		o.logger.Info("creating network", "network", net.Name)
		if _, err := cli.CreateNetwork(net.Name); err != nil {
			return err
		}
	}

	volumes, err := cli.ListVolumes()
	if err != nil {
		return err
	}
	for _, name := range cfg.Deployment.Volumes {
		if contains(volumes, name) {
			continue
		}
		o.logger.Info("creating volume", "volume", name)
		if _, err := cli.CreateVolume(name); err != nil {
			return err
		}
	}

	return nil
}

// buildImage dispatches on the kind of image source: a directory is a build
// context, a regular file is an (unsupported) archive import, anything else
// names an image that must already exist in the engine.
func (o *Orchestrator) buildImage(ctx context.Context, source, tag string) error {
	info, err := os.Stat(source)

	switch {
	case err == nil && info.IsDir():
		o.logger.Info("building image", "source", source, "tag", tag)
		fmt.Fprintf(o.out, "Interpreting %q as an image build directory\nBuilding image...\n", source)

		cli, err := o.engine()
		if err != nil {
			return err
		}
		return cli.BuildImage(BuildOptions{
			ContextDir: source,
			Tag:        tag,
			Output:     o.out,
		})

	case err == nil && info.Mode().IsRegular():
		fmt.Fprintf(o.out, "Interpreting %q as an image archive\n", source)
		return NewEngineError("Build", "image", source,
			"image archive import is not implemented yet", ErrArchiveImportUnsupported)

	default:
		o.logger.Info("interpreting as existing image, nothing to build", "image", source)
		return nil
	}
}

// =============================================================================
// Start Phase (Challenge)
// =============================================================================

// Start creates and starts all containers for the challenge. It never
// creates engine resources: every image, network and volume must already
// exist from a previous Build, and a missing one is a fatal error naming it.
// It returns the started container handles and the ordered player-facing
// service strings.
func (o *Orchestrator) Start(ctx context.Context, cfg *challenge.Config) ([]StartedContainer, []string, error) {
	if cfg.Deployment == nil || len(cfg.Deployment.Containers) == 0 {
		return nil, nil, nil
	}

	if cfg.Deployment.Type != challenge.DeploymentTypeDocker {
		return nil, nil, NewEngineError("Start", "deployment", cfg.Deployment.Type,
			`only the "docker" deployment type is supported`, ErrUnsupportedDeployment)
	}

	cli, err := o.engine()
	if err != nil {
		return nil, nil, err
	}

	if err := o.checkPrerequisites(cfg, cli); err != nil {
		return nil, nil, err
	}

	alloc := deploy.NewPortAllocator()
	runID := uuid.NewString()

	var containers []StartedContainer
	var serviceStrings []string

	for _, def := range cfg.Deployment.Containers {
		plan, err := deploy.PlanContainer(cfg, def.Name, def.Container, alloc)
		if err != nil {
			return nil, nil, err
		}

		id, err := cli.CreateContainer(ContainerSpec{
			Image:      plan.Tag,
			Env:        map[string]string{TestEnvMarker: "true"},
			Labels:     o.containerLabels(cfg, runID),
			Ports:      plan.Ports,
			AutoRemove: true,
		})
		if err != nil {
			return nil, nil, err
		}

		for _, net := range cfg.Deployment.Networks {
			if !net.HasMember(def.Name) {
				continue
			}
			if err := cli.ConnectNetwork(net.Name, id); err != nil {
				return nil, nil, err
			}
		}

		if err := cli.StartContainer(id); err != nil {
			return nil, nil, err
		}
		o.logger.Info("started container", "container", def.Name, "ports", plan.Ports)

		containers = append(containers, StartedContainer{ID: id, Name: def.Name})
		serviceStrings = append(serviceStrings, plan.ServiceStrings...)
	}

	return containers, serviceStrings, nil
}

// checkPrerequisites verifies every derived image tag and every declared
// network and volume already exists, failing with an actionable message
// naming the missing resource.
func (o *Orchestrator) checkPrerequisites(cfg *challenge.Config, cli Client) error {
	tags, err := cli.ImageTags()
	if err != nil {
		return err
	}
	for _, def := range cfg.Deployment.Containers {
		tag := challenge.DockerName(cfg.Title, def.Name, cfg.ChallengeID)
		if !contains(tags, tag) {
			return NewEngineError("Start", "image", tag,
				fmt.Sprintf("cannot find image %q; build the challenge before starting it", tag), ErrMissingImage)
		}
	}

	networks, err := cli.ListNetworks()
	if err != nil {
		return err
	}
	for _, net := range cfg.Deployment.Networks {
		if !contains(networks, net.Name) {
			return NewEngineError("Start", "network", net.Name,
				fmt.Sprintf("cannot find network %q; build the challenge before starting it", net.Name), ErrMissingNetwork)
		}
	}

	volumes, err := cli.ListVolumes()
	if err != nil {
		return err
	}
	for _, name := range cfg.Deployment.Volumes {
		if !contains(volumes, name) {
			return NewEngineError("Start", "volume", name,
				fmt.Sprintf("cannot find volume %q; build the challenge before starting it", name), ErrMissingVolume)
		}
	}

	return nil
}

// =============================================================================
// Start Phase (Solution)
// =============================================================================

// StartSolution starts the challenge's solver container. The solver gets
// host networking so it can reach host-bound challenge ports, and receives
// the full ordered list of service strings as its command-line arguments:
// predefined services first (no port allocation), then every container
// service with ports allocated from a fresh allocator.
func (o *Orchestrator) StartSolution(ctx context.Context, cfg *challenge.Config) (*StartedContainer, error) {
	if cfg.SolutionImage == "" {
		return nil, nil
	}

	cli, err := o.engine()
	if err != nil {
		return nil, err
	}

	solTag := challenge.SolutionTag(cfg.Title, cfg.ChallengeID)

	tags, err := cli.ImageTags()
	if err != nil {
		return nil, err
	}
	if !contains(tags, solTag) {
		return nil, NewEngineError("StartSolution", "image", solTag,
			fmt.Sprintf("cannot find solution image %q; build the challenge before solving it", solTag), ErrMissingImage)
	}

	var serviceStrings []string
	for _, pre := range cfg.PredefinedServices {
		display, err := challenge.FormatUserService(cfg, pre.Type, pre.Subs)
		if err != nil {
			return nil, err
		}
		serviceStrings = append(serviceStrings, display)
	}

	// The allocator is seeded independently of Start; both walk the
	// containers in declared order, so they agree on the assigned ports.
	alloc := deploy.NewPortAllocator()
	if cfg.Deployment != nil {
		for _, def := range cfg.Deployment.Containers {
			plan, err := deploy.PlanContainer(cfg, def.Name, def.Container, alloc)
			if err != nil {
				return nil, err
			}
			serviceStrings = append(serviceStrings, plan.ServiceStrings...)
		}
	}

	id, err := cli.CreateContainer(ContainerSpec{
		Image:       solTag,
		Command:     serviceStrings,
		Env:         map[string]string{TestEnvMarker: "true"},
		Labels:      o.containerLabels(cfg, uuid.NewString()),
		HostNetwork: true,
	})
	if err != nil {
		return nil, err
	}
	if err := cli.StartContainer(id); err != nil {
		return nil, err
	}

	o.logger.Info("started solution container", "tag", solTag, "services", serviceStrings)

	return &StartedContainer{ID: id, Name: solTag}, nil
}

// AwaitSolution blocks until the solver exits and verifies the flag it
// printed. It returns the verification result and the solver's output.
func (o *Orchestrator) AwaitSolution(ctx context.Context, cfg *challenge.Config, sol *StartedContainer) (bool, string, error) {
	cli, err := o.engine()
	if err != nil {
		return false, "", err
	}

	if _, err := cli.WaitContainer(sol.ID); err != nil {
		return false, "", err
	}

	logs, err := cli.ContainerLogs(sol.ID)
	if err != nil {
		return false, "", err
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return false, "", NewEngineError("AwaitSolution", "container", sol.ID, err.Error(), err)
	}

	output := stdout.String()
	return challenge.ValidateSolutionOutput(cfg, output), output, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (o *Orchestrator) containerLabels(cfg *challenge.Config, runID string) map[string]string {
	return map[string]string{
		LabelManaged:   "true",
		LabelRun:       runID,
		LabelChallenge: challenge.DockerName(cfg.Title, "", cfg.ChallengeID),
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
