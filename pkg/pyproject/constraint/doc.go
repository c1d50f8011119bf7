// Package constraint translates Poetry version constraints into PEP 440
// specifiers and PEP 508 markers.
//
// Poetry accepts caret ("^1.2"), tilde ("~1.2") and union ("^2.7 || ^3.5")
// syntax that the standard [project] table does not. [Parse] expands those
// forms into plain comparison clauses; [FormatPython], [Specifier] and
// [Markers] render the result for requires-python, dependency strings and
// environment markers respectively.
//
// Version comparisons use [github.com/Masterminds/semver/v3]; only the
// numeric release segment takes part in them.
package constraint
