package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poetry2rye/pkg/pyproject"
	"github.com/matzehuels/poetry2rye/pkg/pyproject/constraint"
)

// inspectCommand shows what a conversion would read, without writing.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [project-path]",
		Short: "Show the Poetry project as poetry2rye reads it",
		Long: `Inspect loads pyproject.toml and prints the project metadata, the located
module directory and how dependencies will be split between
requires-python, [project] dependencies and rye dev-dependencies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.runInspect,
	}
	cmd.Flags().Bool(keyNoSrc, false, "do not require the package to be movable under src/")
	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, args []string) error {
	s, err := c.settings(cmd.Flags())
	if err != nil {
		return err
	}
	p, err := pyproject.Load(afero.NewOsFs(), projectPath(args), !s.NoSrc)
	if err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Debug("loaded project", "dir", p.Dir)

	w := cmd.OutOrStdout()
	printTitle(w, p.Name+" "+p.Version)
	printKeyValue(w, "description", p.Description)
	printKeyValue(w, "module", p.ModuleName)
	switch {
	case p.ModulePath == "":
		printKeyValue(w, "location", "not found")
	case p.InSourceLayout():
		printKeyValue(w, "location", p.ModulePath+" (src layout)")
	default:
		printKeyValue(w, "location", p.ModulePath)
	}
	if len(p.Scripts) > 0 {
		names := make([]string, len(p.Scripts))
		for i, sc := range p.Scripts {
			names[i] = sc.Name
		}
		printKeyValue(w, "scripts", strings.Join(names, ", "))
	}

	var runtime, dev []string
	for _, d := range p.Dependencies {
		if d.IsInterpreter() {
			rp, err := constraint.FormatPython(d.Constraint)
			if err != nil {
				return err
			}
			printKeyValue(w, "requires-python", rp)
			continue
		}
		req, _, err := d.Requirement(p.Dir)
		if err != nil {
			return err
		}
		if d.Dev {
			dev = append(dev, fmt.Sprintf("%s %s", req, StyleDim.Render("("+d.Group+")")))
		} else {
			runtime = append(runtime, req)
		}
	}

	for _, sec := range []struct {
		title string
		items []string
	}{
		{"dependencies", runtime},
		{"dev-dependencies", dev},
	} {
		fmt.Fprintln(w)
		printTitle(w, fmt.Sprintf("%s (%d)", sec.title, len(sec.items)))
		for _, it := range sec.items {
			printItem(w, it)
		}
	}
	return nil
}
