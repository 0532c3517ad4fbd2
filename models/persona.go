package models

// Personality describes how a persona talks. It is prompt material for the
// reply generator, never shown to users directly.
type Personality struct {
	Traits            []string `json:"traits"`
	ConversationStyle string   `json:"conversationStyle"`
	FlirtStyle        string   `json:"flirtStyle"`
	ResponsePatterns  []string `json:"responsePatterns"`
	BotDeflections    []string `json:"botDeflections,omitempty"` // Canned answers to "are you a bot" probes
}

// Persona is a static synthetic profile used as a matching fallback when no
// real candidate qualifies. Personas are configuration data: loaded once at
// process start, never created or destroyed at runtime.
type Persona struct {
	PersonaID     string           `json:"personaId"` // Always PersonaIDPrefix-namespaced
	Name          string           `json:"name"`
	Age           int              `json:"age"`
	Gender        string           `json:"gender"`
	City          string           `json:"city"`
	Bio           string           `json:"bio"`
	Interests     []string         `json:"interests"`
	PhotoURLs     []string         `json:"photoUrls"` // External URLs, proxied by the media layer
	Personality   Personality      `json:"personality"`
	ReplyDelayMin int              `json:"replyDelayMinSeconds"` // Seconds
	ReplyDelayMax int              `json:"replyDelayMaxSeconds"`
	Preferences   MatchPreferences `json:"preferences"` // Who the persona is matchable with
}
