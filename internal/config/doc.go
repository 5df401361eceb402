// Package config holds tether's runtime settings.
//
// Settings are layered, with later layers overriding earlier ones:
//
//	1. Built-in defaults (Default)
//	2. A TOML file, plus any files it names under "include"
//	3. TETHER_* environment variables
//
// A file looks like:
//
//	include = ["shared.toml"]
//
//	[log]
//	level = "debug"     # debug, info, warn, error
//	output = "stderr"   # stderr, stdout or a file path
//
//	[watch]
//	debounce = "100ms"
//
//	[expression]
//	globals = true             # Math, String, Number, ...
//	functions = "helpers.lua"  # relative to this file
//
//	[output]
//	format = "json"  # json, yaml, toml
//	color = "auto"   # auto, always, never
//	indent = 2
//
// Environment variables map onto the same paths, for example
// TETHER_LOG_LEVEL sets log.level and TETHER_WATCH_DEBOUNCE sets
// watch.debounce. The loader sub-package does the file and environment
// parsing; this package turns the merged map into a typed Config.
package config
