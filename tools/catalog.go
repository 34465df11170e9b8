package tools

// Tool is an entry in the upcoming-tools catalog shown on the landing page.
type Tool struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Available   bool     `json:"available"`
	Progress    string   `json:"progress"`
	ETA         string   `json:"eta"`
	Features    []string `json:"features"`
	Category    string   `json:"category"`
}

var catalog = []Tool{
	{
		ID:          "video-editor",
		Title:       "Video Editor",
		Description: "Advanced video editing with AI-powered features for creating professional content",
		Icon:        "🎬",
		Progress:    "75%",
		ETA:         "Q1 2028",
		Features:    []string{"AI-powered video enhancement", "Auto-caption generation", "Background removal", "Multi-track editing"},
		Category:    "media",
	},
	{
		ID:          "voice-cloner",
		Title:       "Voice Cloner",
		Description: "Clone and modify voices using advanced AI technology for content creation",
		Icon:        "🎤",
		Progress:    "45%",
		ETA:         "Q2 2027",
		Features:    []string{"Voice cloning from samples", "Real-time voice modification", "Text-to-speech synthesis"},
		Category:    "audio",
	},
	{
		ID:          "code-generator",
		Title:       "Code Generator",
		Description: "Generate code from natural language descriptions using AI assistance",
		Icon:        "💻",
		Progress:    "30%",
		ETA:         "Q3 2028",
		Features:    []string{"Natural language to code", "Multiple language targets", "Inline explanations"},
		Category:    "developer",
	},
}

func findTool(id string) *Tool {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
