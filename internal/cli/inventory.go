package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relicta-tech/conlang/internal/inventory"
	"github.com/relicta-tech/conlang/internal/langfile"
)

func newInventoryCmd(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Show the phonemes, groups and rewrites of the language",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.loadProject(false)
			if err != nil {
				return err
			}
			view := newInventoryView(p)
			if o.IsJSON() {
				return o.PrintJSON(view)
			}
			o.printInventory(view)
			return nil
		},
	}
}

type inventoryView struct {
	Name      string              `json:"name,omitempty"`
	Groups    []groupView         `json:"groups"`
	Ungrouped []string            `json:"ungrouped,omitempty"`
	Rewrites  []inventory.Rewrite `json:"rewrites,omitempty"`
	Phonemes  int                 `json:"phoneme_count"`
}

type groupView struct {
	Name    string   `json:"name,omitempty"`
	Abbrev  string   `json:"abbrev"`
	Members []string `json:"members"`
}

func newInventoryView(p *langfile.Project) *inventoryView {
	v := &inventoryView{
		Name:     p.Name,
		Groups:   []groupView{},
		Rewrites: p.Rewrites.Pairs(),
		Phonemes: p.Language.PhonemeCount(),
	}
	for _, gk := range p.Language.Groups() {
		g, err := p.Language.Group(gk)
		if err != nil {
			continue
		}
		gv := groupView{Name: g.Name.Name, Abbrev: string(g.Name.Abbrev), Members: []string{}}
		for _, pk := range g.Members {
			if ph, err := p.Language.Phoneme(pk); err == nil {
				gv.Members = append(gv.Members, ph.String())
			}
		}
		v.Groups = append(v.Groups, gv)
	}
	for _, pk := range p.Language.Ungrouped() {
		if ph, err := p.Language.Phoneme(pk); err == nil {
			v.Ungrouped = append(v.Ungrouped, ph.String())
		}
	}
	return v
}

func (o *Options) printInventory(v *inventoryView) {
	if v.Name != "" {
		o.PrintTitle(v.Name)
	}
	for _, g := range v.Groups {
		label := g.Abbrev
		if g.Name != "" {
			label = fmt.Sprintf("%s (%s)", g.Name, g.Abbrev)
		}
		o.Printf("%s: %s\n", o.Styles.Bold.Render(label), strings.Join(g.Members, ", "))
	}
	if len(v.Ungrouped) > 0 {
		o.Printf("%s: %s\n", o.Styles.Bold.Render("ungrouped"), strings.Join(v.Ungrouped, ", "))
	}
	if len(v.Rewrites) > 0 {
		pairs := make([]string, len(v.Rewrites))
		for i, r := range v.Rewrites {
			pairs[i] = r.From + " = " + r.To
		}
		o.PrintSubtle("rewrites: " + strings.Join(pairs, ", "))
	}
	o.PrintSubtle(fmt.Sprintf("%d phonemes", v.Phonemes))
}
