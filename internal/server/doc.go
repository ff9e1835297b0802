// Package server implements the MCP (Model Context Protocol) server for
// color matching tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the color
// conversion, palette matching and image sampling operations of the
// service package as MCP tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Color Operations:
//   - color_convert: HEX to RGB, LAB and CMYK
//   - color_match: Rank palette colors against a HEX color
//   - color_adjust: Apply lightness boost and fabric compensation steps
//   - color_delta_e: Compare two colors
//
// Image Operations:
//   - image_load: Load image and get metadata
//   - image_sample_region: Average a region, optionally match and preview it
//   - image_dominant_color: Extract, compensate, boost and match a photo
//   - image_grid: Coordinate grid overlay for picking sample points
//   - image_compare_regions: Color difference between two regions
//
// Palette Operations:
//   - palette_info: Active source, size and fallback warning; reload on request
//   - palette_lookup: Entry by code
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602: malformed arguments or an invalid color
//   - -32000: any other tool failure, such as an unreadable image or an
//     unavailable palette
//
// The Go error string is carried in data. Logs go to the hclog logger passed
// to New, never to stdout.
package server
