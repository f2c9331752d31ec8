package parsing

import (
	"fmt"
	"io"
	"os"

	pc "github.com/prataprc/goparsec"
	jast "jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/jerr"
)

// Parser turns a stream of Jodin source text into a jast.Node tree, in
// two steps: FromSource builds the raw, goparsec-traced tree; FromAST
// walks it into the pipeline's own node model. It reads
// PARSEC_DEBUG/EXPORT_AST/PRINT_AST/DEBUG_FOLDER environment hooks for
// interactive grammar debugging, the same hooks a goparsec-based front
// end typically exposes.
type Parser struct{ reader io.Reader }

// NewParser returns a Parser reading source from r.
func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

// Parse reads the whole input, parses it, and translates the result into
// a jast.Node rooted at NodeTopLevel.
func (p *Parser) Parse() (*jast.Node, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, jerr.ErrParse.New(err.Error())
	}

	root, success := p.FromSource(content)
	if !success {
		return nil, jerr.ErrParse.New("failed to parse AST from input content")
	}

	return p.FromAST(root)
}

// FromSource scans source into a traversable goparsec AST.
func (p *Parser) FromSource(source []byte) (pc.Queryable, bool) {
	if os.Getenv("PARSEC_DEBUG") != "" {
		ast.SetDebug()
	}

	root, _ := ast.Parsewith(pProgram, pc.NewScanner(source))

	if os.Getenv("EXPORT_AST") != "" {
		file, _ := os.Create(fmt.Sprintf("%s/debug.ast.dot", os.Getenv("DEBUG_FOLDER")))
		defer file.Close()
		file.Write([]byte(ast.Dotstring("\"Jodin AST\"")))
	}
	if os.Getenv("PRINT_AST") != "" {
		ast.Prettyprint()
	}

	return root, true
}
