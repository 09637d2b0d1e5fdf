package include

import "testing"

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Directive
	}{
		{
			name:    "none",
			content: "<p>hello</p>",
		},
		{
			name:    "single",
			content: `ab<!-- #include virtual="x.html" -->cd`,
			want:    []Directive{{Target: "x.html", Start: 2, End: 36}},
		},
		{
			name:    "no spaces",
			content: `<!--#include virtual="/y.html"-->`,
			want:    []Directive{{Target: "/y.html", Start: 0, End: 33}},
		},
		{
			name:    "spaces around equals",
			content: `<!-- #include virtual = "z.html" -->`,
			want:    []Directive{{Target: "z.html", Start: 0, End: 36}},
		},
		{
			name:    "file attribute ignored",
			content: `<!-- #include file="x.html" -->`,
		},
		{
			name:    "other directive ignored",
			content: `<!-- #echo var="DATE_LOCAL" -->`,
		},
		{
			name:    "unterminated comment",
			content: `<p><!-- #include virtual="x.html"`,
		},
		{
			name:    "empty comment",
			content: `<!-->x`,
		},
		{
			name:    "inside style",
			content: `<style><!-- #include virtual="s.css" --></style>`,
			want:    []Directive{{Target: "s.css", Start: 7, End: 40}},
		},
		{
			name:    "unclosed opener in script",
			content: `<script>"<!--"</script><!--#include virtual="a.html"-->`,
			want:    []Directive{{Target: "a.html", Start: 23, End: 55}},
		},
		{
			name:    "two directives in script",
			content: `<script><!--#include virtual="a.js"--><!--#include virtual="b.js"--></script>`,
			want: []Directive{
				{Target: "a.js", Start: 8, End: 38},
				{Target: "b.js", Start: 38, End: 68},
			},
		},
		{
			name:    "plain comment then directive in script",
			content: `<script><!-- x --><!--#include virtual="a.js"--></script>`,
			want:    []Directive{{Target: "a.js", Start: 18, End: 48}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan([]byte(tt.content))
			if len(got) != len(tt.want) {
				t.Fatalf("Scan() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("directive %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScan_SpansCoverComment(t *testing.T) {
	content := []byte(`<h1>t</h1><!-- #include virtual="a.html" --><br/><!--#include virtual="b.html"-->`)
	for _, d := range Scan(content) {
		span := string(content[d.Start:d.End])
		if span[:4] != "<!--" || span[len(span)-3:] != "-->" {
			t.Errorf("span %q does not delimit a comment", span)
		}
	}
}
