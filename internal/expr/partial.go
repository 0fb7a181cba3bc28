package expr

// PartialEval replaces every subtree of e that does not reference param with
// a Const holding its value. Vars are read and constant calls are invoked
// here, once per compilation.
//
// An evaluation failure is returned as is; the caller must treat the
// predicate as invalid rather than use a partially folded tree.
func PartialEval(e Expr, param string) (Expr, error) {
	if !References(e, param) {
		if c, ok := e.(Const); ok {
			return Value(c.Value), nil
		}
		v, err := Eval(e, nil)
		if err != nil {
			return nil, err
		}
		return Const{Value: v}, nil
	}

	switch n := e.(type) {
	case Param:
		return n, nil

	case Member:
		x, err := PartialEval(n.X, param)
		if err != nil {
			return nil, err
		}
		return Member{X: x, Name: n.Name}, nil

	case Unary:
		x, err := PartialEval(n.X, param)
		if err != nil {
			return nil, err
		}
		return Unary{Op: n.Op, X: x}, nil

	case Binary:
		left, err := PartialEval(n.Left, param)
		if err != nil {
			return nil, err
		}
		right, err := PartialEval(n.Right, param)
		if err != nil {
			return nil, err
		}
		return Binary{Op: n.Op, Left: left, Right: right}, nil

	case Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			x, err := PartialEval(a, param)
			if err != nil {
				return nil, err
			}
			args[i] = x
		}
		return Call{Name: n.Name, Fn: n.Fn, Args: args}, nil

	default:
		panic(unreachable(e))
	}
}
