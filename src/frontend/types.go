package frontend

import (
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// parseType parses a type annotation: a scalar keyword, `*T`, or
// `(T1, T2, …): R`.
func (p *Parser) parseType() (*types.Type, error) {
	switch tok := p.peek(); tok.Kind {
	case source.OpMul:
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil
	case source.LParen:
		p.next()
		var params []*types.Type
		if p.peek().Kind != source.RParen {
			for {
				t, err := p.parseType()
				if err != nil {
					return nil, err
				}
				params = append(params, t)
				if p.peek().Kind == source.OpComma {
					p.next()
					continue
				}
				break
			}
		}
		if _, err := p.expect(source.RParen, ")"); err != nil {
			return nil, err
		}
		if _, err := p.expect(source.OpColon, ":"); err != nil {
			return nil, err
		}
		result, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return types.NewFunction(params, result), nil
	case source.IDENTIFIER:
		if t, ok := scalarTypeOf(p.text(tok)); ok {
			p.next()
			return t, nil
		}
		return nil, p.raiseAt(tok, "unknown type name %q", p.text(tok))
	default:
		return nil, p.raiseAt(tok, "expected a type")
	}
}

// tryParseTypeName reports whether the upcoming token is a standalone
// type name (used only to disambiguate `sizeof(T)` from `sizeof(expr)`);
// it does not attempt the full `(P...): R` function-type grammar, since a
// function type can never be confused with a parenthesised expression at
// that call site (the outer parens already belong to sizeof's own call
// syntax).
func (p *Parser) tryParseTypeName() (*types.Type, bool) {
	switch tok := p.peek(); tok.Kind {
	case source.OpMul:
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, false
		}
		return types.NewPointer(elem), true
	case source.IDENTIFIER:
		if t, ok := scalarTypeOf(p.text(tok)); ok {
			p.next()
			return t, true
		}
	}
	return nil, false
}

func scalarTypeOf(name string) (*types.Type, bool) {
	switch name {
	case "none":
		return types.NoneType, true
	case "never":
		return types.NeverType, true
	case "bool":
		return types.BoolType, true
	case "int":
		return types.IntType, true
	case "float":
		return types.FloatType, true
	default:
		return nil, false
	}
}
