package wrapper

import (
	"encoding/json"
	"testing"
)

func TestProcessWrapperSettingsEqualIgnoresKeyOrderAndWhitespace(t *testing.T) {
	w := &ProcessWrapper{Settings: json.RawMessage(`{"optimizer":{"enabled":true,"runs":200}}`)}
	other := json.RawMessage(`{ "optimizer": { "runs": 200, "enabled": true } }`)
	if !w.SettingsEqual(other) {
		t.Fatalf("expected structurally equal settings with different key order/whitespace to compare equal")
	}
}

func TestProcessWrapperSettingsEqualDetectsDifference(t *testing.T) {
	w := &ProcessWrapper{Settings: json.RawMessage(`{"optimizer":{"enabled":true,"runs":200}}`)}
	other := json.RawMessage(`{"optimizer":{"enabled":true,"runs":500}}`)
	if w.SettingsEqual(other) {
		t.Fatalf("expected a changed runs value to compare unequal")
	}
}
