// Package lsp serves recognition and lexical faults as Language Server
// Protocol diagnostics.
package lsp

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/lexer"
	"github.com/dhamidi/grit/parser"
)

const source = "grit"

// Parser is implemented by parser.Lexerless and parser.Lexerful.
type Parser interface {
	ParseReader(uri string, r io.Reader) (*ast.Node, error)
}

// Server parses every document the client opens, changes or saves and
// publishes the outcome as diagnostics.
type Server struct {
	name    string
	version string
	parser  Parser
	handler protocol.Handler
	server  *server.Server
	log     commonlog.Logger

	mu   sync.Mutex
	docs map[protocol.DocumentUri]string
}

func NewServer(name, version string, p Parser) *Server {
	s := &Server{
		name:    name,
		version: version,
		parser:  p,
		log:     commonlog.GetLogger("grit.lsp"),
		docs:    make(map[protocol.DocumentUri]string),
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}

	s.server = server.NewServer(&s.handler, name, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
	publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if params.Text != nil {
		s.update(ctx, uri, *params.Text)
		return nil
	}
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		s.log.Warningf("read %s: %s", path, err)
		return nil
	}
	s.update(ctx, uri, string(content))
	return nil
}

// Text returns the last known content of an open document.
func (s *Server) Text(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[uri]
	return text, ok
}

func (s *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()

	name := uri
	if path, err := uriToPath(uri); err == nil {
		name = path
	}
	_, err := s.parser.ParseReader(name, strings.NewReader(text))
	if err != nil {
		s.log.Debugf("%s: %s", name, err)
	}
	publish(ctx, uri, Diagnostics(text, err))
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Diagnostics converts the outcome of parsing text into diagnostics. A nil
// error yields an empty, non-nil slice, which clears the client's list.
func Diagnostics(text string, err error) []protocol.Diagnostic {
	if err == nil {
		return []protocol.Diagnostic{}
	}

	line, column := 1, 1
	message := err.Error()
	var rerr *parser.RecognitionError
	var lerr *lexer.Error
	switch {
	case errors.As(err, &rerr):
		line, column = rerr.Line, rerr.Column
		message = "expected " + rerr.Failure.Expected()
	case errors.As(err, &lerr):
		line, column = lerr.Line, lerr.Column
		message = lerr.Err.Error()
		if lerr.Char != lexer.EOF {
			message += ": " + string(lerr.Char)
		}
	}

	start := position(text, line, column)
	end := start
	end.Character++
	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Source:   stringPtr(source),
		Message:  message,
	}}
}

// position converts a 1-based line and rune column into an LSP position,
// whose character offset counts UTF-16 code units.
func position(text string, line, column int) protocol.Position {
	lines := strings.Split(text, "\n")
	pos := protocol.Position{Line: protocol.UInteger(max(0, line-1))}
	if line < 1 || line > len(lines) {
		return pos
	}
	units := 0
	i := 1
	for _, ch := range lines[line-1] {
		if i >= column {
			break
		}
		units++
		if ch >= 0x10000 {
			units++
		}
		i++
	}
	if i < column {
		units += column - i
	}
	pos.Character = protocol.UInteger(units)
	return pos
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func severityPtr(sev protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &sev
}
