// Package convert rewrites a Poetry project into a rye-managed PEP 621
// project.
//
// # Overview
//
// [Converter.Convert] runs a fixed, linear sequence against one project
// directory:
//
//  1. Load the project with [pyproject.Load]
//  2. Build the new document ([Build])
//  3. Copy the project to a sibling backup ([NextBackupPath], [CopyTree])
//  4. Overwrite pyproject.toml
//  5. Report lines that still mention poetry ([ScanResidual])
//  6. Delete poetry.lock
//  7. Move the module under src/ when requested
//
// Nothing is retried or rolled back. Every destructive step happens after the
// backup has been written and verified, so the backup is the recovery path.
//
// # Events
//
// Progress is reported through [observability.Convert]; the converter itself
// only logs at debug level.
//
// [pyproject.Load]: github.com/matzehuels/poetry2rye/pkg/pyproject.Load
// [observability.Convert]: github.com/matzehuels/poetry2rye/pkg/observability.Convert
package convert
