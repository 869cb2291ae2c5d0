// Package output builds and renders the response envelope every command
// emits.
//
// Agent mode wraps outcomes in a structured envelope:
//
//	{"ok": true, "data": ..., "meta": {"command": "collection list", "duration_ms": 12, "count": 2}}
//	{"ok": false, "error": {"code": "NOT_FOUND", "message": "...", "hint": "..."}, "meta": {...}}
//
// Human mode emits the data itself: pterm tables and styled messages on
// a terminal, or the unwrapped legacy JSON/YAML shapes when -o json or
// -o yaml is given. The content of data and error is identical across
// modes; only the wrapping differs.
package output
