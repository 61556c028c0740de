package musicbrainz

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{
			name: "kitten sitting",
			a:    "kitten",
			b:    "sitting",
			want: 3,
		},
		{
			name: "empty to word",
			a:    "",
			b:    "sound",
			want: 5,
		},
		{
			name: "multibyte runes",
			a:    "rós",
			b:    "ros",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levenshteinDistance(tt.a, tt.b)
			if got != tt.want {
				t.Fatalf("distance: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBestCandidate(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		candidates []mbArtist
		wantName   string
		wantOK     bool
	}{
		{
			name:       "matches accent-insensitive spelling",
			query:      "rosalia",
			candidates: []mbArtist{{Name: "ROSALÍA", Country: "ES"}},
			wantName:   "ROSALÍA",
			wantOK:     true,
		},
		{
			name:       "skips unrelated first result",
			query:      "sigur ros",
			candidates: []mbArtist{{Name: "Completely Different"}, {Name: "Sigur Rós"}},
			wantName:   "Sigur Rós",
			wantOK:     true,
		},
		{
			name:       "rejects different artist",
			query:      "phoenix",
			candidates: []mbArtist{{Name: "Radiohead"}},
			wantOK:     false,
		},
		{
			name:   "no candidates",
			query:  "phoenix",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bestCandidate(tt.query, tt.candidates)
			if ok != tt.wantOK {
				t.Fatalf("match: got %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Name != tt.wantName {
				t.Fatalf("candidate: got %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}
