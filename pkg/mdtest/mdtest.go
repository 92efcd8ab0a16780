// Package mdtest extracts end-to-end test cases from markdown files. A
// corpus file is ordinary documentation: each case is a "Test: name"
// heading followed by fenced code blocks, and the fence language says
// what the block is.
//
//	gibberish  the source program (required)
//	input      text fed to the program's stdin
//	output     exact expected stdout
//	errors     expected compiler diagnostics, one per line
package mdtest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const headingPrefix = "Test: "

// Case is one extracted test case.
type Case struct {
	Name       string
	Source     string
	Input      string
	WantOutput string
	WantErrors []string
}

// ExtractCases parses a markdown corpus and returns its cases in file
// order. Fenced blocks outside any "Test:" heading are ignored, as are
// fences with unknown languages, so the corpus can carry prose examples.
func ExtractCases(src []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cases []Case
	var cur *Case

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			title := string(n.Text(src))
			if !strings.HasPrefix(title, headingPrefix) {
				return ast.WalkContinue, nil
			}
			if cur != nil {
				cases = append(cases, *cur)
			}
			cur = &Case{Name: strings.TrimPrefix(title, headingPrefix)}

		case *ast.FencedCodeBlock:
			if cur == nil {
				return ast.WalkContinue, nil
			}
			lang := string(n.Language(src))
			body := blockText(n, src)
			switch lang {
			case "gibberish":
				cur.Source = body
			case "input":
				cur.Input = body
			case "output":
				cur.WantOutput = body
			case "errors":
				for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
					if line != "" {
						cur.WantErrors = append(cur.WantErrors, line)
					}
				}
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if cur != nil {
		cases = append(cases, *cur)
	}

	for _, c := range cases {
		if c.Source == "" {
			return nil, fmt.Errorf("case %q has no gibberish block", c.Name)
		}
	}
	return cases, nil
}

func blockText(n *ast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}
