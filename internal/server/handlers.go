package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/colorspace"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/imaging"
	"github.com/Bioblanks-accounts/Smart-Color-Matcher/internal/service"
)

// errInvalidArgs marks arguments that could not be decoded.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "color_match", "image_sample_region").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments and invalid colors return -32602; any other tool
// failure returns -32000. The Go error string is carried in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if isInvalidParams(err) {
			s.logger.Debug("rejected tool call", "tool", params.Name, "error", err)
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		s.logger.Error("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func isInvalidParams(err error) bool {
	return errors.Is(err, errInvalidArgs) ||
		errors.Is(err, service.ErrInvalidArgument) ||
		errors.Is(err, colorspace.ErrInvalidHex) ||
		errors.Is(err, imaging.ErrDegenerateRegion)
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Color Operations
	case "color_convert":
		return s.handleColorConvert(args)
	case "color_match":
		return s.handleColorMatch(ctx, args)
	case "color_adjust":
		return s.handleColorAdjust(args)
	case "color_delta_e":
		return s.handleColorDeltaE(args)

	// Image Operations
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_region":
		return s.handleImageSampleRegion(ctx, args)
	case "image_dominant_color":
		return s.handleImageDominantColor(ctx, args)
	case "image_grid":
		return s.handleImageGrid(args)
	case "image_compare_regions":
		return s.handleImageCompareRegions(args)

	// Palette Operations
	case "palette_info":
		return s.handlePaletteInfo(ctx, args)
	case "palette_lookup":
		return s.handlePaletteLookup(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// decodeArgs unmarshals tool arguments strictly. Missing arguments decode
// as an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Color Handlers ===

type hexArgs struct {
	Hex string `json:"hex"`
}

func (s *Server) handleColorConvert(args json.RawMessage) (interface{}, error) {
	var a hexArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return service.Describe(a.Hex)
}

func (s *Server) handleColorMatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a service.HexMatchRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.MatchHex(ctx, a)
}

type colorAdjustArgs struct {
	Hex   string               `json:"hex"`
	Steps []service.AdjustStep `json:"steps"`
}

func (s *Server) handleColorAdjust(args json.RawMessage) (interface{}, error) {
	var a colorAdjustArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return service.Adjust(a.Hex, a.Steps)
}

type colorDeltaEArgs struct {
	Hex1   string `json:"hex1"`
	Hex2   string `json:"hex2"`
	Metric string `json:"metric"`
}

func (s *Server) handleColorDeltaE(args json.RawMessage) (interface{}, error) {
	var a colorDeltaEArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.Compare(a.Hex1, a.Hex2, a.Metric)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) validate() error {
	if a.Path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.svc.ImageInfo(a.Path)
}

type imageSampleRegionArgs struct {
	imageLoadArgs
	service.SampleRequest
}

func (s *Server) handleImageSampleRegion(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSampleRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.svc.SampleFile(ctx, a.Path, a.SampleRequest)
}

type imageDominantColorArgs struct {
	imageLoadArgs
	service.ImageMatchRequest
}

func (s *Server) handleImageDominantColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageDominantColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.svc.MatchImageFile(ctx, a.Path, a.ImageMatchRequest)
}

type imageGridArgs struct {
	imageLoadArgs
	service.GridRequest
}

func (s *Server) handleImageGrid(args json.RawMessage) (interface{}, error) {
	var a imageGridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.svc.GridFile(a.Path, a.GridRequest)
}

type imageCompareRegionsArgs struct {
	imageLoadArgs
	service.CompareRegionsRequest
}

func (s *Server) handleImageCompareRegions(args json.RawMessage) (interface{}, error) {
	var a imageCompareRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.svc.CompareRegionsFile(a.Path, a.CompareRegionsRequest)
}

// === Palette Handlers ===

type paletteInfoArgs struct {
	Reload bool `json:"reload"`
}

func (s *Server) handlePaletteInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a paletteInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		return s.svc.ReloadPalette(ctx)
	}
	return s.svc.PaletteInfo(ctx)
}

type paletteLookupArgs struct {
	Code string `json:"code"`
}

func (s *Server) handlePaletteLookup(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a paletteLookupArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.svc.Lookup(ctx, a.Code)
}
