// Package pyproject reads Poetry projects and models pyproject.toml as an
// ordered document.
//
// # Reading a project
//
// [Load] opens <dir>/pyproject.toml, checks the required [tool.poetry]
// fields, and returns a [Project]: metadata, scripts, dependencies tagged as
// interpreter, runtime or development, and the location of the module's
// source directory.
//
//	p, err := pyproject.Load(afero.NewOsFs(), "./myproject", true)
//	if err != nil {
//	    return err
//	}
//	for _, d := range p.Dependencies {
//	    fmt.Println(d.Name, d.Dev)
//	}
//
// # Documents
//
// [Table] keeps keys in the order they were written so that sections a
// caller does not touch survive a [Parse] / [Marshal] round trip. Decoding
// uses BurntSushi/toml; values are encoded with pelletier/go-toml.
package pyproject
