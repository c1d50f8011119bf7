package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/poetry2rye/pkg/convert"
)

func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(keyNoSrc, false, "keep the package where it is instead of moving it under src/")
	cmd.Flags().Bool(keyVirtual, false, "convert to a virtual (dependency-only) project without a build system")
	cmd.Flags().Bool(keyDryRun, false, "print the converted pyproject.toml without changing anything")
}

func (c *CLI) runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	s, err := c.settings(cmd.Flags())
	if err != nil {
		return err
	}
	path := projectPath(args)
	logger.Debug("converting project",
		"path", path,
		"src", !s.NoSrc,
		"virtual", s.Virtual,
		"dry_run", s.DryRun)

	prog := newProgress(logger)
	conv := convert.New(convert.Options{
		EnsureSrc: !s.NoSrc,
		Virtual:   s.Virtual,
		DryRun:    s.DryRun,
		Logger:    logger,
	})
	res, err := conv.Convert(ctx, path)
	if err != nil {
		return err
	}

	if s.DryRun {
		_, err := cmd.OutOrStdout().Write(res.Output)
		return err
	}
	prog.done("converted " + path)
	return nil
}
