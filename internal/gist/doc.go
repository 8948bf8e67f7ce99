// Package gist resolves the remote control configuration.
//
// The control panel publishes a small JSON document in a GitHub Gist:
// the Apps Script endpoint, an obfuscated Gemini API key and the model
// to use. The resolver fetches it with a short timeout and keeps the
// last good payload cached on disk, so a flaky network degrades to
// the cached copy and a cold offline start still gets usable
// defaults.
package gist
