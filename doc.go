// A tiny example, compiling a string to Python:
//
//	env := hissp.NewEnv("__main__")
//	c := hissp.NewCompiler(env, hissp.NewModuleSet(nil))
//	python, err := c.CompileSource(`(print "Hello" "World")`, "<string>")
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(python) // prints a call to Python's print()
package hissp
