// Package config manages the persisted application settings.
//
// Settings live in a settings.json file under the per-user config
// directory. Loading layers PROGRIV_* environment variables over the
// file so CI and power users can override individual keys without
// editing it. Defaults fill in whatever remains unset.
package config
