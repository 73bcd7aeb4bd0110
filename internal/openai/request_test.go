package openai

import (
	"encoding/json"
	"testing"
)

func TestDecideFamily(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name        string
		model       string
		mode        string
		images      int
		allowImages bool
		want        APIFamily
	}{
		{name: "auto_chat_model", model: "gpt-3.5-turbo", mode: "auto", want: FamilyChat},
		{name: "auto_responses_model", model: "gpt-5", mode: "auto", want: FamilyResponses},
		{name: "auto_responses_with_images_falls_back", model: "gpt-5", mode: "auto", images: 2, want: FamilyChat},
		{name: "auto_responses_with_images_allowed", model: "gpt-5-mini", mode: "auto", images: 1, allowImages: true, want: FamilyResponses},
		{name: "forced_chat_wins", model: "gpt-5", mode: "chat", want: FamilyChat},
		{name: "forced_responses_on_chat_model_ignored", model: "gpt-4o", mode: "responses", want: FamilyChat},
		{name: "forced_responses_honored", model: "gpt-5-nano", mode: "responses", want: FamilyResponses},
		{name: "forced_responses_images_toggle_off", model: "gpt-5", mode: "responses", images: 1, want: FamilyChat},
		{name: "unknown_model_defaults_chat", model: "someday-model", mode: "auto", want: FamilyChat},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := BuildInput{
				Model:                tc.model,
				Profile:              ProfileFor(tc.model),
				APIMode:              tc.mode,
				AllowResponsesImages: tc.allowImages,
			}
			for i := 0; i < tc.images; i++ {
				in.ImageURLs = append(in.ImageURLs, "https://example.com/a.png")
			}
			if got := DecideFamily(in); got != tc.want {
				t.Fatalf("DecideFamily = %q, want %q", got, tc.want)
			}
		})
	}
}

func marshalBody(t *testing.T, body any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestBuildChatTextTokenParam(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		model   string
		wantKey string
		skipKey string
	}{
		{name: "legacy_max_tokens", model: "gpt-3.5-turbo", wantKey: "max_tokens", skipKey: "max_completion_tokens"},
		{name: "renamed_param", model: "gpt-4-turbo", wantKey: "max_completion_tokens", skipKey: "max_tokens"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			body, family := Build(BuildInput{
				Model:    tc.model,
				Profile:  ProfileFor(tc.model),
				Sampling: Sampling{MaxTokens: 500, Temperature: 0.7},
			})
			if family != FamilyChat {
				t.Fatalf("family = %q, want %q", family, FamilyChat)
			}
			m := marshalBody(t, body)
			if got, ok := m[tc.wantKey].(float64); !ok || got != 500 {
				t.Fatalf("%s = %v, want 500", tc.wantKey, m[tc.wantKey])
			}
			if _, ok := m[tc.skipKey]; ok {
				t.Fatalf("%s present, want absent", tc.skipKey)
			}
		})
	}
}

func TestBuildTemperatureLocked(t *testing.T) {
	t.Parallel()
	body, _ := Build(BuildInput{
		Model:    "gpt-4o",
		Profile:  ProfileFor("gpt-4o"),
		Sampling: Sampling{MaxTokens: 100, Temperature: 0.3},
	})
	m := marshalBody(t, body)
	if _, ok := m["temperature"]; ok {
		t.Fatalf("temperature present for locked model: %v", m["temperature"])
	}

	body, _ = Build(BuildInput{
		Model:    "gpt-4",
		Profile:  ProfileFor("gpt-4"),
		Sampling: Sampling{MaxTokens: 100, Temperature: 0.3},
	})
	m = marshalBody(t, body)
	if got, ok := m["temperature"].(float64); !ok || got != 0.3 {
		t.Fatalf("temperature = %v, want 0.3", m["temperature"])
	}
}

func TestBuildSamplingOmissions(t *testing.T) {
	t.Parallel()
	body, _ := Build(BuildInput{
		Model:   "gpt-3.5-turbo",
		Profile: ProfileFor("gpt-3.5-turbo"),
		Sampling: Sampling{
			MaxTokens:        100,
			Temperature:      0.7,
			TopP:             1.0, // default, omitted
			PresencePenalty:  0,
			FrequencyPenalty: -0.5,
			Stop:             []string{"###"},
		},
	})
	m := marshalBody(t, body)
	if _, ok := m["top_p"]; ok {
		t.Fatalf("top_p present at default value: %v", m["top_p"])
	}
	if _, ok := m["presence_penalty"]; ok {
		t.Fatalf("presence_penalty present at zero: %v", m["presence_penalty"])
	}
	if got, ok := m["frequency_penalty"].(float64); !ok || got != -0.5 {
		t.Fatalf("frequency_penalty = %v, want -0.5", m["frequency_penalty"])
	}
	stop, ok := m["stop"].([]any)
	if !ok || len(stop) != 1 || stop[0] != "###" {
		t.Fatalf("stop = %v, want [###]", m["stop"])
	}
}

func TestBuildChatVisionShape(t *testing.T) {
	t.Parallel()
	body, family := Build(BuildInput{
		Model:        "gpt-4o",
		Profile:      ProfileFor("gpt-4o"),
		SystemPrompt: "rules",
		UserPrompt:   "make a hero",
		ImageURLs:    []string{"https://cdn.example.com/hero.jpg", "data:image/png;base64,AAAA"},
		Sampling:     Sampling{MaxTokens: 100},
	})
	if family != FamilyChat {
		t.Fatalf("family = %q, want %q", family, FamilyChat)
	}
	m := marshalBody(t, body)
	messages, ok := m["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("messages = %v, want single user message", m["messages"])
	}
	msg := messages[0].(map[string]any)
	if msg["role"] != "user" {
		t.Fatalf("role = %v, want user", msg["role"])
	}
	parts, ok := msg["content"].([]any)
	if !ok || len(parts) != 3 {
		t.Fatalf("content parts = %v, want text plus two images", msg["content"])
	}
	text := parts[0].(map[string]any)
	if text["type"] != "text" || text["text"] != "rules\n\nmake a hero" {
		t.Fatalf("text part = %v", text)
	}
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	if img["url"] != "https://cdn.example.com/hero.jpg" || img["detail"] != "auto" {
		t.Fatalf("image part = %v", img)
	}
}

func TestBuildResponsesShape(t *testing.T) {
	t.Parallel()
	body, family := Build(BuildInput{
		Model:        "gpt-5",
		Profile:      ProfileFor("gpt-5"),
		SystemPrompt: "rules",
		UserPrompt:   "make a pricing table",
		Sampling:     Sampling{MaxTokens: 2000, Temperature: 0.9},
		APIMode:      "auto",
	})
	if family != FamilyResponses {
		t.Fatalf("family = %q, want %q", family, FamilyResponses)
	}
	m := marshalBody(t, body)
	if _, ok := m["messages"]; ok {
		t.Fatal("responses body carries chat messages")
	}
	if _, ok := m["max_tokens"]; ok {
		t.Fatal("responses body carries max_tokens")
	}
	if got, ok := m["max_output_tokens"].(float64); !ok || got != 2000 {
		t.Fatalf("max_output_tokens = %v, want 2000", m["max_output_tokens"])
	}
	if _, ok := m["temperature"]; ok {
		t.Fatal("responses body carries temperature")
	}
	input := m["input"].([]any)[0].(map[string]any)
	parts := input["content"].([]any)
	part := parts[0].(map[string]any)
	if part["type"] != "input_text" || part["text"] != "rules\n\nmake a pricing table" {
		t.Fatalf("input part = %v", part)
	}
	format := m["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "text" {
		t.Fatalf("text format = %v, want text", format["type"])
	}
}
