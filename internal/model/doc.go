// Package model defines the domain types and value objects for the
// progriv CLI tools.
//
// This package contains pure data structures with no external dependencies:
// sites, remote configuration, campaign parameters, generated ad content,
// parsed Google Ads Editor errors, and moderation submissions. Everything
// here is transient state pulled from the control sheet or derived during a
// single run — the only file persisted locally is the settings file handled
// by the config package.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
// Both binaries (progriv and progriv-dist) share this taxonomy; codes 2-5
// are reserved for the dist pipeline's four fatal checkpoints.
package model
