// Package bundle implements the freezing step of the distribution
// pipeline: it turns a checked-out module plus a declarative bundling
// descriptor into a single shippable executable.
//
// The descriptor (progriv.bundle.jsonc) is JSONC, parsed the same way
// as the settings file: comments stripped with github.com/tidwall/jsonc,
// then decoded with encoding/json. The Bundler stages the module source
// under build/<name>/src, generates a hidden-imports source file, embeds
// the Windows icon resource when rsrc or windres is available, compiles
// with the Go toolchain, and packs the data payload as a zip archive
// appended to the executable so dist/ ends up holding exactly one file.
package bundle
