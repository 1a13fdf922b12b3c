package hissp

// unquoteTarget distinguishes a splice (",@") from a plain unquote (","),
// mirroring the original's _Unquote namedtuple's target field.
type unquoteTarget string

const (
	unquoteSplice unquoteTarget = ":*"
	unquotePlain  unquoteTarget = ":?"
)

// unquoteForm is the intermediate value an unquote token reads to, carried
// up to the nearest enclosing template so it can be spliced or substituted
// into the entuple spine being built.
type unquoteForm struct {
	target unquoteTarget
	value  any
}

// templateForm turns form (just read, possibly containing unquoteForm
// values) into the Hissp it should compile to once quasi-quoted: nodes
// become an entuple-spine invocation, qualifiable bare symbols get
// qualified and quoted, a plain top-level unquote is substituted directly,
// and anything else (atoms) passes through unchanged. Mirrors
// Parser._template_form.
func templateForm(form any, env *Env) (any, error) {
	if IsLisspUnicode(form) {
		return Tuple{"quote", form}, nil
	}
	if IsNode(form) {
		spine, err := templateForms(form.(Tuple), env)
		if err != nil {
			return nil, err
		}
		out := Tuple{"", ":"}
		out = append(out, spine...)
		out = append(out, ":?", "")
		return out, nil
	}
	if s, ok := form.(string); ok && !IsControlWord(s) {
		return Tuple{"quote", Qualify(s, false, env)}, nil
	}
	if u, ok := form.(unquoteForm); ok {
		if u.target == unquotePlain {
			return u.value, nil
		}
		return nil, &SyntaxError{Msg: "splice not in tuple"}
	}
	return form, nil
}

// templateForms builds the ":?"/":*"-tagged pair stream that entuple's
// spine is made of, qualifying the head of the tuple (the invocation
// position) specially. Mirrors Parser._template_forms.
func templateForms(forms Tuple, env *Env) ([]any, error) {
	var out []any
	invocation := true
	for _, form := range forms {
		switch {
		case isStr(form) && !IsControlWord(form.(string)):
			out = append(out, ":?", Tuple{"quote", Qualify(form.(string), invocation, env)})
		case isUnquote(form):
			u := form.(unquoteForm)
			out = append(out, string(u.target), u.value)
		case IsNode(form):
			tf, err := templateForm(form, env)
			if err != nil {
				return nil, err
			}
			out = append(out, ":?", tf)
		default:
			out = append(out, ":?", form)
		}
		invocation = false
	}
	return out, nil
}

func isStr(form any) bool {
	_, ok := form.(string)
	return ok
}

func isUnquote(form any) bool {
	_, ok := form.(unquoteForm)
	return ok
}
