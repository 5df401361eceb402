// Package script lets expressions call functions written in Lua.
//
// An Engine runs a sandboxed gopher-lua state with only the base, table,
// string and math libraries. Files cannot be loaded from inside a script
// and print goes to the log. Every global function a loaded script
// defines is exported to expressions by Functions:
//
//	-- helpers.lua
//	function initials(first, last)
//	  return first:sub(1, 1) .. last:sub(1, 1)
//	end
//
//	eng := script.NewEngine()
//	if err := eng.LoadFile("helpers.lua"); err != nil { ... }
//	e, _ := expr.New("initials({first}, {last})", scope,
//	    expr.WithFunctions(eng.Functions()))
//
// Values cross the boundary as nil, bool, float64, string, []any and
// map[string]any. Lua tables with keys 1..n become slices. Each call runs
// under a timeout so a runaway loop fails the expression instead of
// hanging it.
package script
