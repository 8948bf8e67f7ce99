// Package dist implements the sequential build pipeline behind the
// progriv-dist command: verify the Go toolchain, prepare the isolated
// build environment, download dependencies, clear prior artifacts, run
// the bundler, and open the output directory.
//
// The pipeline is strictly sequential and fail-fast. Each checkpoint
// maps to its own exit code so wrapper scripts can tell a missing
// toolchain from a failed compile. External processes run through the
// Runner interface; tests substitute fakes to exercise every checkpoint
// without a toolchain installed.
package dist
