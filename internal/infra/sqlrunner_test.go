package infra

import "testing"

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantMarker string
		wantBody   string
		wantErr    bool
	}{
		{
			name:       "valid marker",
			query:      "--sql a82a11cc-73d4-4118-8dfe-c71dcf7fa05f\nselect 1;\n",
			wantMarker: "a82a11cc-73d4-4118-8dfe-c71dcf7fa05f",
			wantBody:   "select 1;",
		},
		{
			name:       "leading whitespace",
			query:      "\n  --sql a82a11cc-73d4-4118-8dfe-c71dcf7fa05f\nselect 1",
			wantMarker: "a82a11cc-73d4-4118-8dfe-c71dcf7fa05f",
			wantBody:   "select 1",
		},
		{name: "missing marker", query: "select 1", wantErr: true},
		{name: "uppercase uuid rejected", query: "--sql A82A11CC-73D4-4118-8DFE-C71DCF7FA05F\nselect 1", wantErr: true},
		{name: "empty", query: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("extractMarker() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker() unexpected error: %v", err)
			}
			if marker != tc.wantMarker {
				t.Fatalf("marker = %q, want %q", marker, tc.wantMarker)
			}
			if body != tc.wantBody {
				t.Fatalf("body = %q, want %q", body, tc.wantBody)
			}
		})
	}
}
