package quiz

import "testing"

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZSMITH_ALLOW_PLACEHOLDER", "true")
	cfg := ConfigFromEnv()
	if !cfg.AllowPlaceholder {
		t.Fatal("AllowPlaceholder = false, want true")
	}
	if cfg.GenerateMaxTokens != 8000 || cfg.ExplainMaxTokens != 800 {
		t.Errorf("defaults not kept: %+v", cfg)
	}

	t.Setenv("QUIZSMITH_ALLOW_PLACEHOLDER", "nope")
	if ConfigFromEnv().AllowPlaceholder {
		t.Error("unparseable value enabled placeholder generation")
	}
}
