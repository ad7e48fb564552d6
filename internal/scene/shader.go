package scene

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ShaderContent says how AShader content is stored.
type ShaderContent int

const (
	ShaderSourceCode ShaderContent = iota
	ShaderSourceFile
	ShaderCompiledCode
	ShaderCompiledFile
)

func (c ShaderContent) String() string {
	switch c {
	case ShaderSourceCode:
		return "source code"
	case ShaderSourceFile:
		return "source file"
	case ShaderCompiledCode:
		return "compiled code"
	case ShaderCompiledFile:
		return "compiled file"
	}
	return "unknown"
}

func (c ShaderContent) IsCompiled() bool {
	return c == ShaderCompiledCode || c == ShaderCompiledFile
}

func (c ShaderContent) IsFile() bool {
	return c == ShaderSourceFile || c == ShaderCompiledFile
}

const defaultShaderFunction = "main"

// AShader is the content shared by every shader stage: the code or a path to
// it, the entry point and the variable locations the code expects.
type AShader struct {
	RenderableBase

	contentType ShaderContent
	content     string
	code        []byte
	function    string
	locations   map[string]int
	maxLocation int
	hasLocation bool
}

func newAShader() AShader {
	return AShader{
		RenderableBase: newRenderableBase(),
		function:       defaultShaderFunction,
		locations:      make(map[string]int),
		maxLocation:    -1,
	}
}

// SetContent stores source text or a file path.
// Use SetCompiledCode for an inline binary.
func (s *AShader) SetContent(kind ShaderContent, content string) {
	s.contentType = kind
	if kind == ShaderCompiledCode {
		s.content = ""
		s.code = []byte(content)
	} else {
		s.content = content
		s.code = nil
	}
	s.MarkDirty()
}

func (s *AShader) SetCompiledCode(code []byte) {
	s.contentType = ShaderCompiledCode
	s.content = ""
	s.code = append([]byte(nil), code...)
	s.MarkDirty()
}

// Content returns the content kind and the source text or file path.
// For inline compiled code the string is empty; see CompiledCode.
func (s *AShader) Content() (ShaderContent, string) {
	return s.contentType, s.content
}

func (s *AShader) ContentType() ShaderContent { return s.contentType }
func (s *AShader) CompiledCode() []byte       { return s.code }

func (s *AShader) Function() string { return s.function }

func (s *AShader) SetFunction(name string) {
	s.function = name
	s.MarkDirty()
}

// SetLocation records the binding of a shader variable. MaxLocation keeps the
// largest value ever set, negative values included.
func (s *AShader) SetLocation(name string, location int) {
	s.locations[name] = location
	if !s.hasLocation || location > s.maxLocation {
		s.maxLocation = location
		s.hasLocation = true
	}
	s.MarkDirty()
}

func (s *AShader) Location(name string) (int, bool) {
	loc, ok := s.locations[name]
	return loc, ok
}

// MaxLocation is -1 until a location is set.
func (s *AShader) MaxLocation() int { return s.maxLocation }

func (s *AShader) Locations() map[string]int {
	out := make(map[string]int, len(s.locations))
	for k, v := range s.locations {
		out[k] = v
	}
	return out
}

type FragmentShader struct {
	AShader
}

// NewFragmentShader guesses the content kind: known source extensions are
// source files, .spv and .metal are compiled files, text that is not valid
// UTF-8 or contains NUL is compiled code, and anything else is source code.
func NewFragmentShader(content string) *FragmentShader {
	s := &FragmentShader{AShader: newAShader()}
	s.contentType, s.content, s.code = sniffShaderContent(content)
	return s
}

func NewFragmentShaderWithContent(kind ShaderContent, content string) *FragmentShader {
	s := &FragmentShader{AShader: newAShader()}
	s.SetContent(kind, content)
	return s
}

func NewFragmentShaderFromCode(code []byte) *FragmentShader {
	s := &FragmentShader{AShader: newAShader()}
	s.SetCompiledCode(code)
	return s
}

func sniffShaderContent(content string) (ShaderContent, string, []byte) {
	if !utf8.ValidString(content) || strings.IndexByte(content, 0) >= 0 {
		return ShaderCompiledCode, "", []byte(content)
	}
	if !strings.ContainsAny(content, "\n;{") {
		switch strings.ToLower(filepath.Ext(content)) {
		case ".glsl", ".frag", ".vert", ".wgsl":
			return ShaderSourceFile, content, nil
		case ".spv", ".metal":
			return ShaderCompiledFile, content, nil
		}
	}
	return ShaderSourceCode, content, nil
}
