package agent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed agent.json
var rawAgentCard []byte

var (
	loadOnce sync.Once
	loadErr  error

	// AgentCardData holds the validated agent card once LoadAgentCard succeeds.
	AgentCardData []byte
)

// LoadAgentCard validates the embedded card and compacts it for serving.
func LoadAgentCard() error {
	loadOnce.Do(func() {
		var card map[string]any
		if err := json.Unmarshal(rawAgentCard, &card); err != nil {
			loadErr = fmt.Errorf("parse agent card: %w", err)
			return
		}
		for _, field := range []string{"name", "description", "version", "capabilities", "endpoints"} {
			if _, ok := card[field]; !ok {
				loadErr = fmt.Errorf("agent card missing %q", field)
				return
			}
		}
		data, err := json.Marshal(card)
		if err != nil {
			loadErr = fmt.Errorf("encode agent card: %w", err)
			return
		}
		AgentCardData = data
	})
	return loadErr
}
