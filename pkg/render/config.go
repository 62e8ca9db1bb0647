package render

// TemplateConfig holds the configuration options for page rendering.
type TemplateConfig struct {
	// TimeLimit is the clock text shown in every page header.
	TimeLimit string `json:"time_limit"`

	// RequiredSlots lists the page fields every full template must reference.
	// A template missing one of them is rejected when templates are loaded.
	RequiredSlots []string `json:"required_slots"`
}

// DefaultConfig returns a TemplateConfig with the stock header clock and the
// full slot set used by the bundled templates.
func DefaultConfig() *TemplateConfig {
	return &TemplateConfig{
		TimeLimit:     "44:59",
		RequiredSlots: []string{SlotNumber, SlotDifficulty, SlotTime, SlotInstruction, SlotContent, SlotOptions},
	}
}
