package hissp

// Version is this package's version string.
const Version = "v1"

// Must panics if err is non-nil, otherwise returns python unchanged.
// Useful for compiling fixed, known-good source once at package init
// time, the way regexp.MustCompile does for regular expressions:
//
//	var greeting = hissp.Must(compiler.CompileSource(src, file))
func Must(python string, err error) string {
	if err != nil {
		panic(err)
	}
	return python
}
