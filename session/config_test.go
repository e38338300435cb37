package session

import "testing"

func TestSetConfig(t *testing.T) {
	saved := GetConfig()
	defer func() { privConfig = saved }()

	SetConfig("", 0, 50, AbortSearch)

	config := GetConfig()
	if config.GetPasswordsFile() != DefaultPasswordsFile {
		t.Errorf("expected default passwords file, got %q", config.GetPasswordsFile())
	}
	if config.GetWorkers() != 1 {
		t.Errorf("expected at least one worker, got %d", config.GetWorkers())
	}
	if config.GetProgressInterval() != 50 {
		t.Errorf("expected interval 50, got %d", config.GetProgressInterval())
	}
	if config.GetEncodingPolicy() != AbortSearch {
		t.Errorf("expected abort policy, got %s", config.GetEncodingPolicy())
	}
}

func TestParseEncodingPolicy(t *testing.T) {
	for _, policy := range []EncodingPolicy{SkipCandidate, AbortSearch, SubstituteInvalid} {
		parsed, err := ParseEncodingPolicy(policy.String())
		if err != nil || parsed != policy {
			t.Errorf("ParseEncodingPolicy(%q) = %v, %v", policy.String(), parsed, err)
		}
	}

	if parsed, err := ParseEncodingPolicy("ABORT"); err != nil || parsed != AbortSearch {
		t.Error("policy names should be case insensitive")
	}

	if _, err := ParseEncodingPolicy("ignore"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
