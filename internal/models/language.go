package models

import "encoding/json"

// Language is the top-level configuration row every Token, Phrase, Document
// and FSRSLanguageConfig hangs off.
type Language struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Code         string          `json:"code"` // ISO-like; fed verbatim to the tokeniser
	Dicts        []string        `json:"dicts"`
	TTSVoice     string          `json:"tts_voice,omitempty"`
	TTSRate      float64         `json:"tts_rate,omitempty"`
	DeeplSource  string          `json:"deepl_source_lang,omitempty"`
	DeeplTarget  string          `json:"deepl_target_lang,omitempty"`
	ParserConfig json.RawMessage `json:"parser_config,omitempty"`
}
