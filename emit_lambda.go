package hissp

import "fmt"

// function compiles the anonymous-function special form:
//
//	(lambda (<parameters>) <body>)
//
// Mirrors Compiler.function.
func (em *Emitter) function(form Tuple) (string, error) {
	if len(form) < 2 {
		return "", fmt.Errorf("hissp: lambda requires a parameters tuple")
	}
	params, _ := form[1].(Tuple)
	p, err := em.parameters(params)
	if err != nil {
		return "", err
	}
	b, err := em.body(form[2:])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(lambda %s:%s)", p, b), nil
}

// parameters renders a lambda's parameter tuple, divided into
// (<singles> : <pairs>). ":*" and ":**" mark the start of the remaining
// positional/keyword parameters; ":/" marks the end of positional-only
// parameters; ":?" omits the right side of a pair (a bare parameter
// name, or — only for ":*"/":**" — an unpacked rest-parameter). Mirrors
// Compiler.parameters.
func (em *Emitter) parameters(parameters Tuple) (string, error) {
	var parts []string
	i := 0
	for ; i < len(parameters); i++ {
		a, _ := parameters[i].(string)
		if a == ":" {
			i++
			break
		}
		switch a {
		case ":/":
			parts = append(parts, "/")
		case ":*":
			parts = append(parts, "*")
		default:
			parts = append(parts, a)
		}
	}
	for ; i+1 < len(parameters); i += 2 {
		k, _ := parameters[i].(string)
		v := parameters[i+1]
		vStr, _ := v.(string)
		switch k {
		case ":*":
			if vStr == ":?" {
				parts = append(parts, "*")
			} else {
				parts = append(parts, "*"+vStr)
			}
		case ":/":
			parts = append(parts, "/")
		case ":**":
			parts = append(parts, "**"+vStr)
		default:
			if vStr == ":?" {
				parts = append(parts, k)
			} else {
				formed, err := em.Form(v)
				if err != nil {
					return "", err
				}
				parts = append(parts, fmt.Sprintf("%s=%s", k, formed))
			}
		}
	}
	return joinCommas(parts), nil
}

func joinCommas(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

// body compiles a lambda's body forms: a single form's code is indented
// and returned directly; multiple forms are sequenced via a tuple display
// subscripted to its last element (Python has no expression-sequencing
// operator); an empty body compiles to `()`. Mirrors Compiler.body.
func (em *Emitter) body(body []any) (string, error) {
	if len(body) == 0 {
		return "()", nil
	}
	if len(body) == 1 {
		s, err := em.Form(body[0])
		if err != nil {
			return "", err
		}
		return indentContinuation(s), nil
	}
	parts := make([]string, len(body))
	for i, f := range body {
		s, err := em.Form(f)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return fmt.Sprintf("(%s)[-1]", joinArgs(parts)), nil
}

// indentContinuation re-indents a multi-line expression by two spaces per
// embedded newline, the way body's single-form case does when that form's
// compiled code itself spans multiple lines.
func indentContinuation(s string) string {
	hasNewline := false
	for _, r := range s {
		if r == '\n' {
			hasNewline = true
			break
		}
	}
	out := s
	if hasNewline {
		out = "\n" + out
	}
	return replaceNewlineIndent(out)
}

func replaceNewlineIndent(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, '\n', ' ', ' ')
		} else {
			out = append(out, s[i])
		}
	}
	return string(out)
}
