package parser

import (
	"strings"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

// scriptScanner walks the <script> body one token at a time. Expressions
// are not parsed here: they are captured as balanced raw spans and handed
// to the IR builder, which runs them through the expr-lang parser. That
// split lets validation reject unsupported constructs (await, fetch, ...)
// before any expression parsing happens.
type scriptScanner struct {
	src  string
	pos  int
	base int // offset of the script body within the whole file
}

func parseScript(text string, base int, source, filename string) (*ast.Script, *diag.Error) {
	script := &ast.Script{Offset: base, Text: text}
	s := &scriptScanner{src: text, base: base}

	for {
		s.skipTrivia()
		if s.eof() {
			return script, nil
		}
		start := s.abs()
		switch {
		case s.consumeWord("import"):
			decl, ok := s.parseImport(start)
			if !ok {
				return nil, parseErrorAt(source, start, filename, "malformed import declaration")
			}
			script.Imports = append(script.Imports, decl)
		case s.consumeWord("export"):
			s.skipTrivia()
			if !s.consumeWord("let") {
				return nil, parseErrorAt(source, start, filename, "expected 'let' after 'export'")
			}
			name, init, ok := s.parseBinding()
			if !ok {
				return nil, parseErrorAt(source, start, filename, "malformed export declaration")
			}
			script.Props = append(script.Props, &ast.PropDecl{Name: name, Init: init, Start: start})
		case s.consumeWord("let") || s.consumeWord("var") || s.consumeWord("const"):
			name, init, ok := s.parseBinding()
			if !ok {
				return nil, parseErrorAt(source, start, filename, "malformed variable declaration")
			}
			script.Vars = append(script.Vars, &ast.VarDecl{Name: name, Init: init, Start: start})
		case s.consume("$:"):
			s.skipTrivia()
			target := s.readIdent()
			s.skipTrivia()
			if target == "" || !s.consume("=") {
				return nil, parseErrorAt(source, start, filename, "reactive statement must have the form '$: name = expression'")
			}
			expr := s.captureExpr()
			script.Reactives = append(script.Reactives, &ast.ReactiveDecl{Target: target, Expr: expr, Start: start})
		case s.consumeWord("function"):
			fn, perr := s.parseFunction(start, source, filename)
			if perr != nil {
				return nil, perr
			}
			script.Functions = append(script.Functions, fn)
		default:
			// Anything else at the top level is outside the dialect. Capture
			// it so validation and the IR builder can point at it; keep
			// scanning so the whole file is diagnosed in one pass.
			raw := s.captureStatementText()
			if raw.Text != "" {
				scriptAppendBad(script, raw)
			}
		}
	}
}

func scriptAppendBad(script *ast.Script, raw *ast.RawExpr) {
	script.Bad = append(script.Bad, &ast.BadStmt{Text: raw.Text, Start: raw.Start})
}

func parseErrorAt(source string, offset int, filename, detail string) *diag.Error {
	return diag.NewError(diag.ParseError, diag.LocationFromOffset(source, offset, filename),
		map[string]string{"detail": detail})
}

// parseImport parses `import Name from "path";`.
func (s *scriptScanner) parseImport(start int) (*ast.ImportDecl, bool) {
	s.skipTrivia()
	name := s.readIdent()
	if name == "" {
		return nil, false
	}
	s.skipTrivia()
	if !s.consumeWord("from") {
		return nil, false
	}
	s.skipTrivia()
	path, ok := s.readString()
	if !ok {
		return nil, false
	}
	s.skipTrivia()
	s.consume(";")
	return &ast.ImportDecl{Name: name, Path: path, Start: start}, true
}

// parseBinding parses `name` or `name = expression` up to the statement end.
func (s *scriptScanner) parseBinding() (string, *ast.RawExpr, bool) {
	s.skipTrivia()
	name := s.readIdent()
	if name == "" {
		return "", nil, false
	}
	s.skipTrivia()
	if !s.consume("=") {
		s.consume(";")
		return name, nil, true
	}
	return name, s.captureExpr(), true
}

// parseFunction parses `name(params) { body }` after the function keyword.
func (s *scriptScanner) parseFunction(start int, source, filename string) (*ast.FuncDecl, *diag.Error) {
	s.skipTrivia()
	name := s.readIdent()
	s.skipTrivia()
	if name == "" || !s.consume("(") {
		return nil, parseErrorAt(source, start, filename, "malformed function declaration")
	}
	var params []string
	for {
		s.skipTrivia()
		if s.consume(")") {
			break
		}
		p := s.readIdent()
		if p == "" {
			return nil, parseErrorAt(source, start, filename, "malformed parameter list")
		}
		params = append(params, p)
		s.skipTrivia()
		s.consume(",")
	}
	s.skipTrivia()
	if !s.consume("{") {
		return nil, parseErrorAt(source, start, filename, "function body must be a { } block")
	}
	body, perr := s.parseStmts(source, filename)
	if perr != nil {
		return nil, perr
	}
	return &ast.FuncDecl{Name: name, Params: params, Body: body, Start: start}, nil
}

// parseStmts parses statements until the matching closing brace.
func (s *scriptScanner) parseStmts(source, filename string) ([]ast.Stmt, *diag.Error) {
	var stmts []ast.Stmt
	for {
		s.skipTrivia()
		if s.eof() {
			return nil, parseErrorAt(source, s.abs(), filename, "unterminated block")
		}
		if s.consume("}") {
			return stmts, nil
		}
		stmt, perr := s.parseStmt(source, filename)
		if perr != nil {
			return nil, perr
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

func (s *scriptScanner) parseStmt(source, filename string) (ast.Stmt, *diag.Error) {
	start := s.abs()
	switch {
	case s.consumeWord("if"):
		return s.parseIf(start, source, filename)
	case s.consumeWord("while"):
		cond, ok := s.readParenExpr()
		if !ok {
			return nil, parseErrorAt(source, start, filename, "expected condition after 'while'")
		}
		body, perr := s.parseBracedBody(source, filename)
		if perr != nil {
			return nil, perr
		}
		return &ast.WhileStmt{Cond: cond, Body: body, Start: start}, nil
	case s.consumeWord("for"):
		return s.parseFor(start, source, filename)
	case s.consumeWord("return"):
		var value *ast.RawExpr
		s.skipInlineSpace()
		if !s.eof() && s.src[s.pos] != ';' && s.src[s.pos] != '\n' && s.src[s.pos] != '}' {
			value = s.captureExpr()
		} else {
			s.consume(";")
		}
		return &ast.ReturnStmt{Value: value, Start: start}, nil
	case s.peek("{"):
		s.consume("{")
		body, perr := s.parseStmts(source, filename)
		if perr != nil {
			return nil, perr
		}
		return &ast.BlockStmt{Body: body, Start: start}, nil
	case s.consume(";"):
		return nil, nil
	default:
		if target, op, ok := s.tryAssignTarget(); ok {
			value := s.captureExpr()
			return &ast.AssignStmt{Target: target, Op: op, Value: value, Start: start}, nil
		}
		raw := s.captureStatementText()
		return &ast.BadStmt{Text: raw.Text, Start: raw.Start}, nil
	}
}

func (s *scriptScanner) parseIf(start int, source, filename string) (ast.Stmt, *diag.Error) {
	stmt := &ast.IfStmt{Start: start}
	for {
		cond, ok := s.readParenExpr()
		if !ok {
			return nil, parseErrorAt(source, start, filename, "expected condition after 'if'")
		}
		body, perr := s.parseBracedBody(source, filename)
		if perr != nil {
			return nil, perr
		}
		stmt.Branches = append(stmt.Branches, &ast.IfBranch{Cond: cond, Body: body})

		s.skipTrivia()
		if !s.consumeWord("else") {
			return stmt, nil
		}
		s.skipTrivia()
		if s.consumeWord("if") {
			continue
		}
		elseBody, perr := s.parseBracedBody(source, filename)
		if perr != nil {
			return nil, perr
		}
		stmt.Else = elseBody
		return stmt, nil
	}
}

func (s *scriptScanner) parseFor(start int, source, filename string) (ast.Stmt, *diag.Error) {
	s.skipTrivia()
	if !s.consume("(") {
		return nil, parseErrorAt(source, start, filename, "expected '(' after 'for'")
	}
	s.skipTrivia()
	header := s.captureUntilCloseParen()
	body, perr := s.parseBracedBody(source, filename)
	if perr != nil {
		return nil, perr
	}

	// Only for..of is in the dialect; classic three-clause for headers
	// become BadStmt so the IR builder rejects them with a real location.
	text := header.Text
	for _, kw := range []string{"const ", "let ", "var "} {
		text = strings.TrimPrefix(text, kw)
	}
	varName, iterable, found := strings.Cut(text, " of ")
	varName = strings.TrimSpace(varName)
	if !found || !isIdent(varName) {
		return &ast.BadStmt{Text: "for (" + header.Text + ")", Start: start}, nil
	}
	iterStart := header.Start + strings.Index(header.Text, " of ") + len(" of ")
	return &ast.ForEachStmt{
		Var:      varName,
		Iterable: &ast.RawExpr{Text: strings.TrimSpace(iterable), Start: iterStart},
		Body:     body,
		Start:    start,
	}, nil
}

func (s *scriptScanner) parseBracedBody(source, filename string) ([]ast.Stmt, *diag.Error) {
	s.skipTrivia()
	if !s.consume("{") {
		start := s.abs()
		raw := s.captureStatementText()
		_ = raw
		return nil, parseErrorAt(source, start, filename, "statement body must be a { } block")
	}
	return s.parseStmts(source, filename)
}

// tryAssignTarget scans an access path (ident, dots, index brackets) and an
// assignment operator. On failure nothing is consumed.
func (s *scriptScanner) tryAssignTarget() (target, op string, ok bool) {
	save := s.pos
	startPos := s.pos
	if s.readIdent() == "" {
		s.pos = save
		return "", "", false
	}
	for {
		if s.consume(".") {
			if s.readIdent() == "" {
				s.pos = save
				return "", "", false
			}
			continue
		}
		if s.peek("[") {
			if !s.skipBalanced('[', ']') {
				s.pos = save
				return "", "", false
			}
			continue
		}
		break
	}
	target = strings.TrimSpace(s.src[startPos:s.pos])
	s.skipInlineSpace()
	for _, candidate := range []string{"+=", "-=", "="} {
		if s.peek(candidate) {
			// "==" and "=>" are comparisons/arrows, not assignments.
			if candidate == "=" && (s.peek("==") || s.peek("=>")) {
				break
			}
			s.consume(candidate)
			return target, candidate, true
		}
	}
	s.pos = save
	return "", "", false
}
