package wa

import "testing"

func TestResolveJID(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		fallbacks []string
		want      string
		wantOK    bool
	}{
		{
			name:      "canonical passes through",
			candidate: "5551234@s.whatsapp.net",
			fallbacks: []string{"999@lid"},
			want:      "5551234@s.whatsapp.net",
			wantOK:    true,
		},
		{
			name:      "lid resolves via fallback",
			candidate: "123@lid",
			fallbacks: []string{"5551234@s.whatsapp.net"},
			want:      "5551234@s.whatsapp.net",
			wantOK:    true,
		},
		{
			name:      "lid skips non-canonical fallbacks",
			candidate: "123@lid",
			fallbacks: []string{"", "456@lid", "5551234@s.whatsapp.net"},
			want:      "5551234@s.whatsapp.net",
			wantOK:    true,
		},
		{
			name:      "unresolvable lid keeps original",
			candidate: "123@lid",
			fallbacks: []string{"456@lid"},
			want:      "123@lid",
			wantOK:    false,
		},
		{
			name:      "unresolvable lid without fallbacks",
			candidate: "123@lid",
			want:      "123@lid",
			wantOK:    false,
		},
		{
			name:      "group jid passes through",
			candidate: "12036304@g.us",
			want:      "12036304@g.us",
			wantOK:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveJID(tt.candidate, tt.fallbacks...)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveJID(%q, %v) = (%q, %v), want (%q, %v)",
					tt.candidate, tt.fallbacks, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeJID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5551234:12@s.whatsapp.net", "5551234@s.whatsapp.net"},
		{"5551234@s.whatsapp.net", "5551234@s.whatsapp.net"},
		{"12036304@g.us", "12036304@g.us"},
		{"not a jid", "not a jid"},
	}
	for _, tt := range tests {
		if got := NormalizeJID(tt.in); got != tt.want {
			t.Errorf("NormalizeJID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
