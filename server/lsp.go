package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/types"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "rsc-lsp"

var lspLog = commonlog.GetLogger("rsc.lsp")

// LspServer checks the open documents together with the project's scripts
// and answers editor queries from the last unit that checked cleanly.
type LspServer struct {
	mu        sync.Mutex
	docs      map[string]string // URI → full document content
	workspace map[string]string // URI → on-disk script content
	lastUnit  *compiler.Unit

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates an LSP server. files are the project's scripts; their
// names become file:// URIs.
func NewLSP(files []compiler.SourceFile) *LspServer {
	s := &LspServer{
		docs:      make(map[string]string),
		workspace: make(map[string]string, len(files)),
		version:   "0.1.0",
	}
	for _, f := range files {
		s.workspace[fileURI(f.Name)] = f.Text
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

func fileURI(name string) string {
	if strings.Contains(name, "://") {
		return name
	}
	return "file://" + name
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	lspLog.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"~", "_"},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.open(string(params.TextDocument.URI), params.TextDocument.Text)
	s.publishDiagnostics(ctx)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.open(string(params.TextDocument.URI), whole.Text)
			s.publishDiagnostics(ctx)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.close(string(params.TextDocument.URI))

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	s.publishDiagnostics(ctx)
	return nil
}

func (s *LspServer) open(uri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()
}

func (s *LspServer) close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

func (s *LspServer) document(uri string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[uri]
	return text, ok
}

// --- Checking ---

// check compiles the workspace with open documents overlaid. A clean
// result replaces the unit used for queries.
func (s *LspServer) check() error {
	s.mu.Lock()
	merged := make(map[string]string, len(s.workspace)+len(s.docs))
	for uri, text := range s.workspace {
		merged[uri] = text
	}
	for uri, text := range s.docs {
		merged[uri] = text
	}
	s.mu.Unlock()

	files := make([]compiler.SourceFile, 0, len(merged))
	for uri, text := range merged {
		files = append(files, compiler.SourceFile{Name: uri, Text: text})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	unit, err := compiler.Check(files)
	if err != nil {
		lspLog.Debugf("check failed: %s", err)
		return err
	}
	s.mu.Lock()
	s.lastUnit = unit
	s.mu.Unlock()
	return nil
}

func (s *LspServer) unit() *compiler.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUnit
}

// diagnostics checks everything and maps the result onto the open
// documents: the failing document gets one diagnostic, the others none.
func (s *LspServer) diagnostics() map[string][]protocol.Diagnostic {
	err := s.check()

	s.mu.Lock()
	out := make(map[string][]protocol.Diagnostic, len(s.docs))
	for uri := range s.docs {
		out[uri] = []protocol.Diagnostic{}
	}
	s.mu.Unlock()

	if err == nil {
		return out
	}
	file, pos, ok := compiler.ErrorPosition(err)
	if !ok {
		return out
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	start := toProtocol(pos)
	out[file] = []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: start,
			End:   protocol.Position{Line: start.Line, Character: start.Character + 1},
		},
		Severity: &severity,
		Source:   &source,
		Message:  diagnosticMessage(err),
	}}
	return out
}

// diagnosticMessage strips the file:line:col prefix the editor already shows.
func diagnosticMessage(err error) string {
	msg := err.Error()
	file, pos, _ := compiler.ErrorPosition(err)
	prefix := fmt.Sprintf("%d:%d: ", pos.Line, pos.Column)
	if file != "" {
		prefix = file + ":" + prefix
	}
	return strings.TrimPrefix(msg, prefix)
}

func (s *LspServer) publishDiagnostics(ctx *glsp.Context) {
	for uri, diagnostics := range s.diagnostics() {
		go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentUri(uri),
			Diagnostics: diagnostics,
		})
	}
}

// toProtocol converts a 1-based source position to a 0-based LSP one.
func toProtocol(pos compiler.Position) protocol.Position {
	line, col := pos.Line-1, pos.Column-1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}

func toRange(span compiler.Span) protocol.Range {
	return protocol.Range{Start: toProtocol(span.Start), End: toProtocol(span.End)}
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.hover(word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	text, ok := s.document(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	if loc := s.definition(word); loc != nil {
		return loc, nil
	}
	return nil, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	text, ok := s.document(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.references(word), nil
}

// --- Unit-backed logic ---

// complete offers procedures after ~, def_ keywords after def_ and
// reserved words, trigger names and type names otherwise.
func (s *LspServer) complete(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	add := func(label, detail string, kind protocol.CompletionItemKind) {
		if !strings.HasPrefix(label, prefix) {
			return
		}
		labelCopy, detailCopy := label, detail
		items = append(items, protocol.CompletionItem{
			Label:      labelCopy,
			Kind:       &kind,
			Detail:     &detailCopy,
			InsertText: &labelCopy,
		})
	}

	if strings.HasPrefix(prefix, "~") {
		prefix = prefix[1:]
		if unit := s.unit(); unit != nil {
			for _, sig := range unit.Sigs {
				if sig.Trigger == "proc" {
					add(sig.Name, signatureOf(sig), protocol.CompletionItemKindFunction)
				}
			}
		}
		return items
	}

	for _, t := range types.All() {
		add("def_"+t.String(), "declare a "+t.String()+" local", protocol.CompletionItemKindKeyword)
		add(t.String(), "type", protocol.CompletionItemKindTypeParameter)
	}
	for _, kw := range compiler.Keywords() {
		add(kw, "keyword", protocol.CompletionItemKindKeyword)
	}
	for _, trigger := range compiler.Triggers {
		add(trigger, "trigger", protocol.CompletionItemKindKeyword)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func signatureOf(sig *compiler.ProcSignature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s,%s](", sig.Trigger, sig.Name)
	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s $%s", p.Type, p.Name)
	}
	b.WriteString(")")
	if len(sig.Returns) > 0 {
		names := make([]string, len(sig.Returns))
		for i, t := range sig.Returns {
			names[i] = t.String()
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(names, ", "))
	}
	return b.String()
}

func (s *LspServer) hover(word string) *protocol.Hover {
	var value string
	if unit := s.unit(); unit != nil {
		if sig, ok := unit.Signature(word); ok {
			value = fmt.Sprintf("```\n%s\n```", signatureOf(sig))
			if sig.Trigger != "proc" {
				value += "\n\nNot callable with `~`."
			}
		}
	}
	if value == "" {
		name := strings.TrimPrefix(word, "def_")
		if t, ok := types.Lookup(name); ok {
			value = fmt.Sprintf("**%s**", t)
			if t.IsDomain() {
				value += "\n\nDomain reference. Defaults to `null` (-1)."
			}
		}
	}
	if value == "" {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

func (s *LspServer) definition(word string) []protocol.Location {
	unit := s.unit()
	if unit == nil {
		return nil
	}
	for _, decl := range unit.Procs {
		if decl.Name == word {
			return []protocol.Location{{
				URI:   protocol.DocumentUri(decl.File),
				Range: toRange(decl.Span()),
			}}
		}
	}
	return nil
}

func (s *LspServer) references(word string) []protocol.Location {
	unit := s.unit()
	if unit == nil {
		return nil
	}
	var locations []protocol.Location
	for _, decl := range unit.Procs {
		file := decl.File
		compiler.Walk(decl, func(n compiler.Node) bool {
			if call, ok := n.(*compiler.ProcCall); ok && call.Name == word {
				locations = append(locations, protocol.Location{
					URI:   protocol.DocumentUri(file),
					Range: toRange(call.Span()),
				})
			}
			return true
		})
	}
	return locations
}

// --- Text extraction helpers ---

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// extractPrefix returns the word fragment before the cursor for completion,
// including a leading ~.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	if start > 0 && line[start-1] == '~' {
		start--
	}

	if start == col {
		return ""
	}
	return line[start:col]
}

// extractWord returns the full identifier under the cursor, without sigils.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(rune(line[end])) {
		end++
	}

	if start == end {
		return ""
	}
	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
