package main

import "testing"

func TestVoicesListsEveryProvider(t *testing.T) {
	out, _, err := runCLI(t, []string{"voices"}, "")
	if err != nil {
		t.Fatalf("voices: %v", err)
	}
	requireContains(t, out, "== openai ==")
	requireContains(t, out, "== elevenlabs ==")
	requireContains(t, out, "ON ELEVENLABS")
	requireContains(t, out, "Adam (pNInz6obpgDQGcFmaJgB)")
	requireContains(t, out, "neutral")
}

func TestVoicesProviderFilter(t *testing.T) {
	out, _, err := runCLI(t, []string{"voices", "--provider", "ElevenLabs"}, "")
	if err != nil {
		t.Fatalf("voices --provider: %v", err)
	}
	requireContains(t, out, "== elevenlabs ==")
	requireContains(t, out, "Rachel")
	requireContains(t, out, "ON OPENAI")
	requireNotContains(t, out, "== openai ==")

	if _, _, err := runCLI(t, []string{"voices", "--provider", "acme"}, ""); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
