package server

import (
	"testing"
)

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func requiredOf(t *testing.T, tool Tool) []string {
	t.Helper()
	required, ok := tool.InputSchema["required"]
	if !ok {
		return nil
	}
	requiredList, ok := required.([]string)
	if !ok {
		t.Fatalf("%s: 'required' should be a string slice", tool.Name)
	}
	return requiredList
}

func TestGetToolDefinitions(t *testing.T) {
	expectedTools := []string{
		"color_convert",
		"color_match",
		"color_adjust",
		"color_delta_e",
		"image_load",
		"image_sample_region",
		"image_dominant_color",
		"image_grid",
		"image_compare_regions",
		"palette_info",
		"palette_lookup",
	}

	toolMap := toolsByName()
	if len(toolMap) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(toolMap), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared.
			for _, name := range requiredOf(t, tool) {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %q is not declared", name)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool string
		want []string
	}{
		{"color_convert", []string{"hex"}},
		{"color_match", []string{"hex"}},
		{"color_adjust", []string{"hex", "steps"}},
		{"color_delta_e", []string{"hex1", "hex2"}},
		{"image_load", []string{"path"}},
		{"image_sample_region", []string{"path"}},
		{"image_dominant_color", []string{"path"}},
		{"image_grid", []string{"path"}},
		{"image_compare_regions", []string{"path", "region1", "region2"}},
		{"palette_info", nil},
		{"palette_lookup", []string{"code"}},
	}

	toolMap := toolsByName()
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got := requiredOf(t, toolMap[tt.tool])
			if len(got) != len(tt.want) {
				t.Fatalf("required: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("required[%d]: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToolDefinitions_MatchOptions(t *testing.T) {
	toolMap := toolsByName()
	for _, name := range []string{"color_match", "image_sample_region", "image_dominant_color"} {
		t.Run(name, func(t *testing.T) {
			props := toolMap[name].InputSchema["properties"].(map[string]interface{})
			for _, opt := range []string{"limit", "use_extracted", "metric"} {
				if _, ok := props[opt]; !ok {
					t.Errorf("missing %s", opt)
				}
			}
		})
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	tests := []struct {
		tool  string
		param string
		want  interface{}
	}{
		{"color_match", "limit", 5},
		{"color_match", "metric", "euclidean"},
		{"color_match", "use_extracted", true},
		{"color_match", "lightness_boost", 1.0},
		{"image_sample_region", "match", false},
		{"image_sample_region", "scale", 1.0},
		{"image_dominant_color", "method", "average"},
		{"image_dominant_color", "n_clusters", 3},
		{"image_dominant_color", "fabric_mode", true},
		{"image_dominant_color", "lightness_boost", 1.05},
		{"image_grid", "spacing", 50},
		{"image_grid", "labels", true},
		{"image_compare_regions", "metric", "euclidean"},
		{"palette_info", "reload", false},
	}

	toolMap := toolsByName()
	for _, tt := range tests {
		t.Run(tt.tool+"."+tt.param, func(t *testing.T) {
			props := toolMap[tt.tool].InputSchema["properties"].(map[string]interface{})
			param, ok := props[tt.param].(map[string]interface{})
			if !ok {
				t.Fatalf("parameter %s not declared", tt.param)
			}
			if got := param["default"]; got != tt.want {
				t.Errorf("default: got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	if expected := GetToolDefinitions(); len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
