package statement

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "SingleStatement",
			script: "SELECT 1",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "TwoStatements",
			script: "ATTACH 'https://example.com/db.duckdb' AS mydb; SELECT * FROM mydb.t",
			want: []string{
				"ATTACH 'https://example.com/db.duckdb' AS mydb",
				"SELECT * FROM mydb.t",
			},
		},
		{
			name:   "SemicolonInsideLiteral",
			script: "SELECT 'a;b'; SELECT 2",
			want:   []string{"SELECT 'a;b'", "SELECT 2"},
		},
		{
			name:   "SemicolonInsideQuotedIdent",
			script: `SELECT "a;b" FROM t; SELECT 2`,
			want:   []string{`SELECT "a;b" FROM t`, "SELECT 2"},
		},
		{
			name:   "EscapedQuoteInLiteral",
			script: "SELECT 'it''s; fine'; SELECT 2",
			want:   []string{"SELECT 'it''s; fine'", "SELECT 2"},
		},
		{
			name:   "LineComment",
			script: "SELECT 1; -- trailing; comment\nSELECT 2",
			want:   []string{"SELECT 1", "-- trailing; comment\nSELECT 2"},
		},
		{
			name:   "BlockComment",
			script: "SELECT /* a;b */ 1; SELECT 2",
			want:   []string{"SELECT /* a;b */ 1", "SELECT 2"},
		},
		{
			name:   "TrailingSemicolonAndWhitespace",
			script: "SELECT 1;\n\n",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "EmptyScript",
			script: "  ;;  ",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.script)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
