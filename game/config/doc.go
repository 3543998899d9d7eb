// Package config manages time-control presets.
//
// Presets name a clock configuration (initial time plus per-move increment)
// so clients can say "blitz" instead of spelling out durations. Five
// built-ins ship with the server: untimed, bullet, blitz, rapid, and
// classical. A presets directory of JSON files can add more or shadow the
// built-ins; files are validated on load and cached until RefreshCache.
package config
