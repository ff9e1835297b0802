package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

// callTool issues a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolResult decodes the JSON text content of a successful tool call.
func toolResult(t *testing.T, resp *MCPResponse) map[string]interface{} {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one item, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return out
}

func wantErrorCode(t *testing.T, resp *MCPResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("error code: got %d, want %d (%v)", resp.Error.Code, code, resp.Error.Data)
	}
}

func TestHandleToolsCall_ColorConvert(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "color_convert", map[string]interface{}{"hex": "#FFFFFF"}))

	if out["hex"] != "#ffffff" {
		t.Errorf("hex: got %v, want #ffffff", out["hex"])
	}
	rgb := out["rgb"].(map[string]interface{})
	if rgb["r"] != float64(255) || rgb["g"] != float64(255) || rgb["b"] != float64(255) {
		t.Errorf("rgb: got %v", rgb)
	}
	cmyk := out["cmyk"].(map[string]interface{})
	if cmyk["k"] != float64(0) {
		t.Errorf("cmyk: got %v", cmyk)
	}
	lab := out["lab"].(map[string]interface{})
	if l := lab["L"].(float64); l < 99.9 || l > 100.1 {
		t.Errorf("lab.L: got %v, want ~100", l)
	}
}

func TestHandleToolsCall_ColorMatch(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "color_match", map[string]interface{}{
		"hex":   "#BE1A33",
		"limit": 2,
	}))

	if out["input_hex"] != "#be1a33" {
		t.Errorf("input_hex: got %v", out["input_hex"])
	}
	if out["catalog_source"] != "test" {
		t.Errorf("catalog_source: got %v", out["catalog_source"])
	}
	if out["total_compared"] != float64(4) {
		t.Errorf("total_compared: got %v, want 4", out["total_compared"])
	}

	results := out["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2", len(results))
	}
	first := results[0].(map[string]interface{})
	entry := first["entry"].(map[string]interface{})
	if entry["code"] != "19-1664 TCX" {
		t.Errorf("top match: got %v, want 19-1664 TCX", entry["code"])
	}
	if first["band"] == "" || first["similarity"].(float64) <= 90 {
		t.Errorf("top match should be very similar: %v", first)
	}
}

func TestHandleToolsCall_ColorMatch_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args interface{}
		code int
	}{
		{"missing arguments", nil, -32602},
		{"invalid hex", map[string]interface{}{"hex": "red"}, -32602},
		{"unknown metric", map[string]interface{}{"hex": "#ff0000", "metric": "cmc"}, -32602},
		{"unknown argument", map[string]interface{}{"hex": "#ff0000", "colour": "x"}, -32602},
		{"wrong type", map[string]interface{}{"hex": "#ff0000", "limit": "five"}, -32602},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantErrorCode(t, callTool(t, s, "color_match", tt.args), tt.code)
		})
	}
}

func TestHandleToolsCall_ColorAdjust(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "color_adjust", map[string]interface{}{
		"hex": "#ffffff",
		"steps": []map[string]interface{}{
			{"type": "lightness_boost", "factor": 1.1},
			{"type": "fabric"},
		},
	}))
	if out["hex"] != "#dddddd" {
		t.Errorf("hex: got %v, want #dddddd", out["hex"])
	}
	if out["input_hex"] != "#ffffff" {
		t.Errorf("input_hex: got %v", out["input_hex"])
	}

	wantErrorCode(t, callTool(t, s, "color_adjust", map[string]interface{}{
		"hex":   "#ffffff",
		"steps": []map[string]interface{}{{"type": "sharpen"}},
	}), -32602)
}

func TestHandleToolsCall_ColorDeltaE(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "color_delta_e", map[string]interface{}{
		"hex1":   "#000000",
		"hex2":   "#ffffff",
		"metric": "ciede2000",
	}))
	if out["metric"] != "ciede2000" {
		t.Errorf("metric: got %v", out["metric"])
	}
	if out["similarity"] != float64(0) {
		t.Errorf("similarity: got %v, want 0", out["similarity"])
	}

	same := toolResult(t, callTool(t, s, "color_delta_e", map[string]interface{}{
		"hex1": "#5f4b8b",
		"hex2": "#5F4B8B",
	}))
	if same["delta_e"] != float64(0) || same["similarity"] != float64(100) {
		t.Errorf("identical colors: got %v", same)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	out := toolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}))

	if out["width"] != float64(100) || out["height"] != float64(80) {
		t.Errorf("dimensions: got %vx%v, want 100x80", out["width"], out["height"])
	}
	if out["format"] != "png" {
		t.Errorf("format: got %v, want png", out["format"])
	}
}

func TestHandleToolsCall_ImageLoad_Errors(t *testing.T) {
	s := newTestServer(t)

	// Missing path is a bad request; an unreadable file is a tool failure.
	wantErrorCode(t, callTool(t, s, "image_load", map[string]interface{}{}), -32602)
	wantErrorCode(t, callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}), -32000)
}

func TestHandleToolsCall_ImageSampleRegion(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 60, 40, color.RGBA{0x88, 0xb0, 0x4b, 255})

	out := toolResult(t, callTool(t, s, "image_sample_region", map[string]interface{}{
		"path":    imgPath,
		"x":       30,
		"y":       20,
		"size":    10,
		"match":   true,
		"limit":   1,
		"preview": true,
	}))

	if out["hex"] != "#88b04b" {
		t.Errorf("hex: got %v, want #88b04b", out["hex"])
	}
	region := out["region"].(map[string]interface{})
	if region["x1"] != float64(25) || region["x2"] != float64(35) {
		t.Errorf("region: got %v", region)
	}

	matches := out["matches"].(map[string]interface{})
	results := matches["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("matches: got %d, want 1", len(results))
	}
	entry := results[0].(map[string]interface{})["entry"].(map[string]interface{})
	if entry["name"] != "Greenery" {
		t.Errorf("match: got %v, want Greenery", entry["name"])
	}

	preview := out["preview"].(map[string]interface{})
	if preview["mime_type"] != "image/png" || preview["width"] != float64(10) {
		t.Errorf("preview: got %v", preview)
	}
}

func TestHandleToolsCall_ImageSampleRegion_Rectangle(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 60, 40, color.RGBA{10, 20, 30, 255})

	out := toolResult(t, callTool(t, s, "image_sample_region", map[string]interface{}{
		"path": imgPath,
		"x1":   50, "y1": 30, "x2": 80, "y2": 90,
	}))
	region := out["region"].(map[string]interface{})
	if region["x2"] != float64(60) || region["y2"] != float64(40) {
		t.Errorf("region should be clamped to the image: got %v", region)
	}
	if _, ok := out["matches"]; ok {
		t.Error("matches should be omitted unless requested")
	}
}

func TestHandleToolsCall_ImageSampleRegion_Errors(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 20, 20, color.RGBA{10, 20, 30, 255})

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"no coordinates", map[string]interface{}{"path": imgPath}, -32602},
		{"no path", map[string]interface{}{"x": 1, "y": 1}, -32602},
		{"outside image", map[string]interface{}{"path": imgPath, "x1": 30, "y1": 30, "x2": 40, "y2": 40}, -32602},
		{"negative size", map[string]interface{}{"path": imgPath, "x": 5, "y": 5, "size": -1}, -32602},
		{"missing file", map[string]interface{}{"path": "/nonexistent/image.png", "x": 5, "y": 5}, -32000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantErrorCode(t, callTool(t, s, "image_sample_region", tt.args), tt.code)
		})
	}
}

func TestHandleToolsCall_ImageDominantColor(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 80, 80, color.RGBA{0x5f, 0x4b, 0x8b, 255})

	out := toolResult(t, callTool(t, s, "image_dominant_color", map[string]interface{}{
		"path":            imgPath,
		"fabric_mode":     false,
		"lightness_boost": 1.0,
		"limit":           3,
	}))

	extraction := out["extraction"].(map[string]interface{})
	if extraction["method"] != "average" {
		t.Errorf("method: got %v, want average", extraction["method"])
	}
	if out["fabric_mode"] != false || out["lightness_boost"] != float64(1) {
		t.Errorf("params: got fabric_mode=%v lightness_boost=%v", out["fabric_mode"], out["lightness_boost"])
	}
	results := out["results"].([]interface{})
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	entry := results[0].(map[string]interface{})["entry"].(map[string]interface{})
	if entry["name"] != "Ultra Violet" {
		t.Errorf("top match: got %v, want Ultra Violet", entry["name"])
	}
}

func TestHandleToolsCall_ImageDominantColor_Errors(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{10, 20, 30, 255})

	wantErrorCode(t, callTool(t, s, "image_dominant_color", map[string]interface{}{"path": imgPath, "method": "median"}), -32602)
	wantErrorCode(t, callTool(t, s, "image_dominant_color", map[string]interface{}{"path": "/nonexistent/image.png"}), -32000)
}

func TestHandleToolsCall_ImageGrid(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 120, 90, color.RGBA{200, 200, 200, 255})

	out := toolResult(t, callTool(t, s, "image_grid", map[string]interface{}{
		"path":    imgPath,
		"spacing": 30,
		"color":   "#0000ff",
	}))
	if out["width"] != float64(120) || out["height"] != float64(90) {
		t.Errorf("size: got %vx%v, want 120x90", out["width"], out["height"])
	}
	if out["mime_type"] != "image/png" || out["image_base64"] == "" {
		t.Errorf("image missing: %v", out["mime_type"])
	}

	wantErrorCode(t, callTool(t, s, "image_grid", map[string]interface{}{"path": imgPath, "color": "blue"}), -32602)
	wantErrorCode(t, callTool(t, s, "image_grid", map[string]interface{}{"spacing": 10}), -32602)
}

func TestHandleToolsCall_ImageCompareRegions(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 40, 40, color.RGBA{0xbf, 0x19, 0x32, 255})

	out := toolResult(t, callTool(t, s, "image_compare_regions", map[string]interface{}{
		"path":    imgPath,
		"region1": map[string]int{"x1": 0, "y1": 0, "x2": 10, "y2": 10},
		"region2": map[string]int{"x1": 20, "y1": 20, "x2": 40, "y2": 40},
		"metric":  "ciede2000",
	}))
	if out["hex1"] != "#bf1932" || out["hex2"] != "#bf1932" {
		t.Errorf("averages: got %v, %v", out["hex1"], out["hex2"])
	}
	if out["delta_e"] != float64(0) || out["metric"] != "ciede2000" {
		t.Errorf("delta_e: got %v (%v)", out["delta_e"], out["metric"])
	}
	r2 := out["region2"].(map[string]interface{})
	if r2["x2"] != float64(40) {
		t.Errorf("region2: got %v", r2)
	}

	wantErrorCode(t, callTool(t, s, "image_compare_regions", map[string]interface{}{
		"path":    imgPath,
		"region1": map[string]int{"x1": 0, "y1": 0, "x2": 10, "y2": 10},
	}), -32602)
}

func TestHandleToolsCall_PaletteInfo(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "palette_info", nil))
	if out["catalog_source"] != "test" || out["catalog_rows"] != float64(4) {
		t.Errorf("palette_info: got %v", out)
	}
	if _, ok := out["warning"]; ok {
		t.Error("warning should be omitted when the primary source served")
	}

	out = toolResult(t, callTool(t, s, "palette_info", map[string]interface{}{"reload": true}))
	if out["catalog_rows"] != float64(4) {
		t.Errorf("palette_info after reload: got %v", out)
	}
	wantErrorCode(t, callTool(t, s, "palette_info", map[string]interface{}{"reload": "yes"}), -32602)
}

func TestHandleToolsCall_PaletteLookup(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "palette_lookup", map[string]interface{}{"code": "15-0343 tcx"}))
	entry := out["entry"].(map[string]interface{})
	if entry["name"] != "Greenery" {
		t.Errorf("entry: got %v", entry)
	}
	c := out["color"].(map[string]interface{})
	if c["hex"] != "#88b04b" {
		t.Errorf("color: got %v", c)
	}

	wantErrorCode(t, callTool(t, s, "palette_lookup", map[string]interface{}{"code": "00-0000 TCX"}), -32000)
	wantErrorCode(t, callTool(t, s, "palette_lookup", map[string]interface{}{}), -32602)
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	wantErrorCode(t, callTool(t, s, "nonexistent_tool", map[string]interface{}{}), -32000)
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	}
	wantErrorCode(t, s.handleToolsCall(context.Background(), req), -32602)
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer(t)

	// Every advertised tool is dispatched: calling it with no arguments may
	// fail validation, but never as an unknown tool.
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			_, err := s.executeTool(context.Background(), tool.Name, nil)
			if err != nil && err.Error() == "unknown tool: "+tool.Name {
				t.Errorf("tool %s is listed but not dispatched", tool.Name)
			}
		})
	}
}
