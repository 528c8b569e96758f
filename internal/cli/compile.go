package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
	"github.com/relicta-tech/conlang/internal/inventory"
	"github.com/relicta-tech/conlang/internal/langfile"
	"github.com/relicta-tech/conlang/internal/soundchange"
)

type compileOptions struct {
	add bool
}

func newCompileCmd(o *Options) *cobra.Command {
	co := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile [rule...]",
		Short: "Compile sound change rules against the language",
		Long: `Compile one or more sound change rules against the inventory of the
language document and print their canonical form.

Rules are read from the arguments, or one per line from standard input
when no arguments are given. A missing language document is treated as an
empty inventory, in which case every character becomes a representative.

With --add the compiled rules are appended to the document's rule list.`,
		Example: `  conlang compile 't→d/V_V'
  conlang compile '[ae]→i/_#' 'k/tʃ/_[ie]'
  conlang compile --add 's→h/#_V'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runCompile(co, args)
		},
	}
	cmd.Flags().BoolVar(&co.add, "add", false, "append compiled rules to the language document")
	return cmd
}

// compileResult is the outcome of compiling one rule.
type compileResult struct {
	Input    string         `json:"input"`
	OK       bool           `json:"ok"`
	Text     string         `json:"text,omitempty"`
	Display  string         `json:"display,omitempty"`
	Fields   []fieldResult  `json:"fields,omitempty"`
	Error    string         `json:"error,omitempty"`
	Problems []fieldProblem `json:"problems,omitempty"`

	rule *soundchange.SoundChange
}

type fieldResult struct {
	Field       string        `json:"field"`
	HasBoundary bool          `json:"has_boundary,omitempty"`
	Elements    []elementNode `json:"elements"`
}

type elementNode struct {
	Kind           string        `json:"kind"`
	Text           string        `json:"text"`
	Representative bool          `json:"representative,omitempty"`
	Any            []elementNode `json:"any,omitempty"`
}

type fieldProblem struct {
	Field  string `json:"field"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
}

func (o *Options) runCompile(co *compileOptions, args []string) error {
	const op = "cli.compile"

	rules := args
	if len(rules) == 0 {
		var err error
		if rules, err = readLines(o); err != nil {
			return clerrors.IOWrap(err, op, "failed to read rules from stdin")
		}
	}
	if len(rules) == 0 {
		return clerrors.Validation(op, "no rules given")
	}

	p, err := o.loadProject(!co.add)
	if err != nil {
		return err
	}

	c := p.Compiler()
	results := make([]compileResult, 0, len(rules))
	failed := 0
	for _, text := range rules {
		res := compileRule(c, p, o.ruleText(text))
		if !res.OK {
			failed++
		}
		o.Logger.Debug("rule compiled", "rule", res.Input, "ok", res.OK)
		results = append(results, res)
	}

	if o.IsJSON() {
		if err := o.PrintJSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			o.printCompileResult(res)
		}
	}

	if co.add && failed == 0 {
		for _, res := range results {
			p.Book.Add(res.rule)
		}
		path := o.languageFile()
		if err := langfile.Save(path, langfile.Export(p, "")); err != nil {
			return err
		}
		o.Logger.Info("rules added", "file", path, "count", len(results))
	}

	if failed > 0 {
		return clerrors.Validationf(op, "%d of %d rules failed to compile", failed, len(results))
	}
	return nil
}

func compileRule(c *soundchange.Compiler, p *langfile.Project, text string) compileResult {
	res := compileResult{Input: text}

	sc, err := c.Compile(text)
	if err != nil {
		res.Error = err.Error()
		var pe *soundchange.ParseError
		if errors.As(err, &pe) {
			for _, fe := range pe.Fields {
				res.Problems = append(res.Problems, fieldProblem{
					Field:  fe.Field.String(),
					Kind:   fe.Kind.String(),
					Offset: fe.Offset,
				})
			}
		}
		return res
	}

	res.OK = true
	res.rule = sc
	res.Text = sc.Text(p.Language, p.Pool)
	res.Display = sc.Display(p.Language, p.Pool)
	for _, kind := range soundchange.FieldKinds {
		res.Fields = append(res.Fields, fieldResult{
			Field:       kind.String(),
			HasBoundary: sc.Field(kind).HasBoundary,
			Elements:    elementNodes(sc.Elements(kind), p.Language, p.Pool),
		})
	}
	return res
}

func elementNodes(elems []soundchange.Element, lang *inventory.Language, pool *inventory.Pool) []elementNode {
	nodes := make([]elementNode, 0, len(elems))
	for _, e := range elems {
		node := elementNode{
			Kind:           e.Kind.String(),
			Text:           soundchange.ElementText(e, lang, pool),
			Representative: e.Representative,
		}
		if e.Kind == soundchange.ElementAny {
			node.Any = elementNodes(e.Any, lang, pool)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func (o *Options) printCompileResult(res compileResult) {
	if !res.OK {
		o.PrintError(res.Input)
		if len(res.Problems) == 0 {
			o.PrintSubtle("  " + res.Error)
		}
		for _, pr := range res.Problems {
			o.PrintSubtle(fmt.Sprintf("  %s: %s at offset %d", pr.Field, pr.Kind, pr.Offset))
		}
		return
	}

	o.PrintSuccess(res.Text)
	if res.Display != res.Text {
		o.PrintSubtle("  " + res.Display)
	}
	if !o.IsVerbose() {
		return
	}
	for _, f := range res.Fields {
		if len(f.Elements) == 0 {
			continue
		}
		parts := make([]string, len(f.Elements))
		for i, n := range f.Elements {
			parts[i] = describeNode(n)
		}
		o.Printf("  %-12s %s\n", f.Field, strings.Join(parts, " "))
	}
}

func describeNode(n elementNode) string {
	switch {
	case n.Kind == "any":
		parts := make([]string, len(n.Any))
		for i, a := range n.Any {
			parts[i] = describeNode(a)
		}
		return "any(" + strings.Join(parts, " ") + ")"
	case n.Representative:
		return n.Text + "(representative)"
	default:
		return n.Text + "(" + n.Kind + ")"
	}
}

// readLines reads non-blank lines from stdin.
func readLines(o *Options) ([]string, error) {
	if o.Stdin == nil {
		return nil, nil
	}
	var lines []string
	scanner := bufio.NewScanner(o.Stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
