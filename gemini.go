package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"google.golang.org/genai"
)

const recognizePrompt = `Analyze this screenshot of a %[1]dx%[1]d Word Hunt / Boggle letter board.

Return the board as JSON:
{
  "rows": <number of rows>,
  "cols": <number of columns>,
  "letters": [["A", "B", ...], ...]
}

Rules:
- One entry per tile, row by row from the top-left corner.
- Each entry is a single uppercase letter A-Z. A tile showing "Qu" is written "Q".
- Use "" for a tile you cannot read.
- Ignore scores, timers, found words and anything outside the board.
- Answer ONLY with the JSON, no commentary or markdown.`

// Recognizer turns a grid screenshot into raw letters.
type Recognizer interface {
	RecognizeGrid(ctx context.Context, imageData []byte, mimeType string, size int) ([][]string, error)
}

// recognizedGrid is the JSON shape requested from the model.
type recognizedGrid struct {
	Rows    int        `json:"rows"`
	Cols    int        `json:"cols"`
	Letters [][]string `json:"letters"`
}

var recognizedGridSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rows": {Type: genai.TypeInteger},
		"cols": {Type: genai.TypeInteger},
		"letters": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
	},
	Required: []string{"rows", "cols", "letters"},
}

// RecognizeGrid sends an image to Gemini and returns a size×size grid of
// uppercase letters, "" where a tile could not be read.
func (g *GeminiClient) RecognizeGrid(ctx context.Context, imageData []byte, mimeType string, size int) ([][]string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(recognizePrompt, size)},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
			ResponseSchema:   recognizedGridSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	return parseRecognizedGrid(text, size)
}

// parseRecognizedGrid decodes the model answer and fits it to size×size.
func parseRecognizedGrid(text string, size int) ([][]string, error) {
	var rg recognizedGrid
	if err := json.Unmarshal([]byte(text), &rg); err != nil {
		return nil, fmt.Errorf("parse grid JSON: %w\nraw response: %s", err, text)
	}
	if len(rg.Letters) == 0 {
		return nil, fmt.Errorf("invalid grid: %dx%d with %d letter rows", rg.Rows, rg.Cols, len(rg.Letters))
	}

	grid := make([][]string, size)
	for r := range grid {
		grid[r] = make([]string, size)
		if r >= len(rg.Letters) {
			continue
		}
		for c := 0; c < size && c < len(rg.Letters[r]); c++ {
			grid[r][c] = cleanGlyph(rg.Letters[r][c])
		}
	}
	return grid, nil
}

// cleanGlyph keeps the first letter of a recognized tile, mapping the digits
// OCR commonly confuses with letters. Anything else becomes blank.
func cleanGlyph(s string) string {
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case '0':
			return "O"
		case '1':
			return "I"
		case '5':
			return "S"
		case '2':
			return "Z"
		}
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
		return ""
	}
	return ""
}
