// Package pkg provides the libraries behind poetry2rye.
//
// # Overview
//
// poetry2rye migrates a Poetry project to a PEP 621 [project] table managed by
// rye and built with hatchling. The pkg directory is organized as:
//
//  1. [pyproject] - reading Poetry projects and the ordered TOML document
//  2. [pyproject/constraint] - Poetry version constraints to PEP 440 and PEP 508
//  3. [convert] - building the new document, backup, write, cleanup, src move
//  4. [observability] - conversion event hooks
//  5. [errors] - coded errors and name validation
//
// # Data flow
//
//	pyproject.toml
//	     ↓
//	[pyproject] Load (metadata, dependencies, module location)
//	     ↓
//	[convert] Build (new document)
//	     ↓
//	backup → write → residual scan → lock removal → src move
//
// # Quick Start
//
//	res, err := convert.New(convert.Options{EnsureSrc: true}).Convert(ctx, "./myproject")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("backup:", res.BackupPath)
//
// [pyproject]: github.com/matzehuels/poetry2rye/pkg/pyproject
// [pyproject/constraint]: github.com/matzehuels/poetry2rye/pkg/pyproject/constraint
// [convert]: github.com/matzehuels/poetry2rye/pkg/convert
// [observability]: github.com/matzehuels/poetry2rye/pkg/observability
// [errors]: github.com/matzehuels/poetry2rye/pkg/errors
package pkg
