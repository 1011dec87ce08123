// Package challenge provides the challenge configuration model and the pure
// functions derived from it.
//
// All functions here are pure (no I/O, no side effects). The imperative shell
// (internal/shell/docker) uses them to plan and execute engine actions.
//
// # Functions
//
//   - Naming: deterministic docker tags from challenge identity (DockerName, SolutionTag)
//   - Services: player-facing connection strings (FormatUserService)
//   - Flags: flag verification and formatting (ValidateFlag, ValidateSolutionOutput, FirstTextFlag)
//   - Config: YAML decoding with normalization (ParseConfig)
package challenge
