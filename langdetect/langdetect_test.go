package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantName string
	}{
		{"english", "The quick brown fox jumps over the lazy dog and runs into the forest", "en", "English"},
		{"german", "Das ist ein sehr schöner Tag und wir gehen heute zusammen in den Park", "de", "German"},
		{"french", "Je voudrais une tasse de café avec du lait, s'il vous plaît", "fr", "French"},
		{"empty", "", Undetermined, "Undetermined"},
		{"too short", "  ok  ", Undetermined, "Undetermined"},
	}

	var d Detector
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"ja", "Japanese"},
		{"pt", "Portuguese"},
		{"und", "und"},
		{"not a code!", "not a code!"},
	}

	for _, tt := range tests {
		if got := Name(tt.code); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
