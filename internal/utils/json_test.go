package utils

import (
	"testing"
)

func TestExtractJSONFromCodeBlock(t *testing.T) {
	content := "배정 결과입니다.\n```json\n{\"characters\":[{\"name\":\"민수\"}],\"suggestion\":\"{자유 토론}\"}\n```\n끝"
	got := ExtractJSON(content)
	want := "{\"characters\":[{\"name\":\"민수\"}],\"suggestion\":\"{자유 토론}\"}"
	if got != want {
		t.Fatalf("unexpected json: %s", got)
	}
}

func TestExtractJSONWithoutObject(t *testing.T) {
	content := "JSON 없음"
	if got := ExtractJSON(content); got != content {
		t.Fatalf("expected original content, got %s", got)
	}
}

func TestExtractJSONEscapedQuote(t *testing.T) {
	content := `앞 {"a":"say \"}\" ok","b":1} 뒤`
	if got := ExtractJSON(content); got != `{"a":"say \"}\" ok","b":1}` {
		t.Fatalf("unexpected json: %s", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Suggestion string `json:"suggestion"`
	}
	v, err := DecodeJSON[payload]("설명\n{\"suggestion\":\"순서대로 발언\"}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Suggestion != "순서대로 발언" {
		t.Fatalf("unexpected suggestion: %s", v.Suggestion)
	}

	if _, err := DecodeJSON[payload]("not json"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestToJSON(t *testing.T) {
	if got := ToJSON(map[string]int{"a": 1}); got != `{"a":1}` {
		t.Fatalf("unexpected json: %s", got)
	}
}
