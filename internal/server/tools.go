package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func hexProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"pattern":     "^#?[0-9A-Fa-f]{6}$",
	}
}

// matchProperties returns the ranking options shared by every matching tool.
func matchProperties() map[string]interface{} {
	return map[string]interface{}{
		"limit": map[string]interface{}{
			"type":        "integer",
			"description": "Number of matches to return (1-20)",
			"default":     5,
			"minimum":     1,
			"maximum":     20,
		},
		"use_extracted": map[string]interface{}{
			"type":        "boolean",
			"description": "Compare against the color extracted from each swatch photo when available, instead of the reference color",
			"default":     true,
		},
		"metric": map[string]interface{}{
			"type":        "string",
			"description": "Color difference formula",
			"enum":        []string{"euclidean", "ciede2000"},
			"default":     "euclidean",
		},
	}
}

func regionProperty(description string) map[string]interface{} {
	coord := func(d string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": d}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": coord("Left edge X coordinate (inclusive)"),
			"y1": coord("Top edge Y coordinate (inclusive)"),
			"x2": coord("Right edge X coordinate (exclusive)"),
			"y2": coord("Bottom edge Y coordinate (exclusive)"),
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Color Operations
		{
			Name:        "color_convert",
			Description: "Convert a HEX color to RGB, CIELAB (D65) and CMYK.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": hexProperty("Color as #RRGGBB"),
				},
				"required": []string{"hex"},
			},
		},
		{
			Name:        "color_match",
			Description: "Find the palette colors closest to a HEX color, ranked by ΔE with a similarity score and a perceptual band for each match.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(matchProperties(), map[string]interface{}{
					"hex": hexProperty("Color to match as #RRGGBB"),
					"lightness_boost": map[string]interface{}{
						"type":        "number",
						"description": "Multiply L* by this factor before matching (1 = unchanged)",
						"default":     1.0,
					},
				}),
				"required": []string{"hex"},
			},
		},
		{
			Name:        "color_adjust",
			Description: "Apply lightness boost and fabric compensation steps to a color, in order. Each step re-quantizes to HEX, so order matters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": hexProperty("Color to adjust as #RRGGBB"),
					"steps": map[string]interface{}{
						"type":        "array",
						"description": "Adjustments to apply in order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"type": map[string]interface{}{
									"type": "string",
									"enum": []string{"lightness_boost", "fabric"},
								},
								"factor": map[string]interface{}{
									"type":        "number",
									"description": "Lightness factor for lightness_boost (default: 1.05)",
								},
							},
							"required": []string{"type"},
						},
					},
				},
				"required": []string{"hex", "steps"},
			},
		},
		{
			Name:        "color_delta_e",
			Description: "Compute the color difference between two HEX colors, with a similarity score and a perceptual band.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex1": hexProperty("First color as #RRGGBB"),
					"hex2": hexProperty("Second color as #RRGGBB"),
					"metric": map[string]interface{}{
						"type":    "string",
						"enum":    []string{"euclidean", "ciede2000"},
						"default": "euclidean",
					},
				},
				"required": []string{"hex1", "hex2"},
			},
		},

		// Image Operations
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image is cached for subsequent sampling.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_region",
			Description: "Average the color of an image region: either a square of 'size' pixels centered on (x, y), or the rectangle x1,y1 (inclusive) to x2,y2 (exclusive). The region is clamped to the image. Optionally match the result against the palette and attach a PNG preview of the region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(matchProperties(), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x":    map[string]interface{}{"type": "integer", "description": "Center X coordinate"},
					"y":    map[string]interface{}{"type": "integer", "description": "Center Y coordinate"},
					"size": map[string]interface{}{"type": "integer", "description": "Side of the sampled square in pixels (default: 15)"},
					"x1":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (inclusive)"},
					"y1":   map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (inclusive)"},
					"x2":   map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2":   map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
					"match": map[string]interface{}{
						"type":        "boolean",
						"description": "Also rank the palette against the sampled color",
						"default":     false,
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach the sampled region as base64 PNG",
						"default":     false,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Preview scale factor (default: 1.0)",
						"default":     1.0,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dominant_color",
			Description: "Extract the dominant color of a product photo, compensate for fabric texture, boost lightness and match the result against the palette. Near-white and near-black pixels are ignored.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(matchProperties(), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"method": map[string]interface{}{
						"type":        "string",
						"description": "Extraction method",
						"enum":        []string{"average", "kmeans"},
						"default":     "average",
					},
					"n_clusters": map[string]interface{}{
						"type":        "integer",
						"description": "Number of k-means clusters (1-8)",
						"default":     3,
						"minimum":     1,
						"maximum":     8,
					},
					"fabric_mode": map[string]interface{}{
						"type":        "boolean",
						"description": "Darken the extracted color to compensate for fabric texture",
						"default":     true,
					},
					"lightness_boost": map[string]interface{}{
						"type":        "number",
						"description": "Multiply L* by this factor before matching",
						"default":     1.05,
					},
				}),
				"required": []string{"path"},
			},
		},

		{
			Name:        "image_grid",
			Description: "Render the image with a labeled coordinate grid, to read off the x and y values for image_sample_region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines",
						"default":     50,
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Print coordinates at every intersection",
						"default":     true,
					},
					"color": hexProperty("Grid line color as #RRGGBB (default: #ff0000)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_compare_regions",
			Description: "Average two regions of one image and compute the color difference between them, e.g. to check two panels of a garment for a shade mismatch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"region1": regionProperty("First region"),
					"region2": regionProperty("Second region"),
					"metric": map[string]interface{}{
						"type":    "string",
						"enum":    []string{"euclidean", "ciede2000"},
						"default": "euclidean",
					},
				},
				"required": []string{"path", "region1", "region2"},
			},
		},

		// Palette Operations
		{
			Name:        "palette_info",
			Description: "Report which palette source is in use, how many colors it holds and any fallback warning.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Discard the cached palette and load it from the source again",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "palette_lookup",
			Description: "Look up a palette entry by its code (case-insensitive).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"code": map[string]interface{}{
						"type":        "string",
						"description": "Palette code, e.g. 19-1664 TCX",
					},
				},
				"required": []string{"code"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
