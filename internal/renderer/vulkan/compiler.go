package vulkan

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// Compiler turns WGSL source into SPIR-V words.
type Compiler func(wgsl string) ([]uint32, error)

// NagaCompiler compiles with naga.
func NagaCompiler(wgsl string) ([]uint32, error) {
	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return SPIRVWords(spirv)
}

// SPIRVWords reinterprets little-endian SPIR-V bytes as words.
func SPIRVWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("invalid SPIR-V length %d", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("invalid SPIR-V magic 0x%08x", words[0])
	}
	return words, nil
}

const spirvMagic = 0x07230203
