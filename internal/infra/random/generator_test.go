package random

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		name     string
		alphabet string
		length   int
	}{
		{"digits", "0123456789", 6},
		{"single char", "a", 1},
		{"mixed case", "abcXYZ", 48},
		{"unicode alphabet", "абвгд", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gen.Generate(tt.alphabet, tt.length)
			assert.Len(t, []rune(got), tt.length)
			for _, r := range got {
				assert.True(t, strings.ContainsRune(tt.alphabet, r), "unexpected rune %q", r)
			}
		})
	}
}

func TestGenerate_ClampsInvalidInputs(t *testing.T) {
	gen := NewGenerator()

	assert.Len(t, gen.Generate("abc", 0), 1)
	assert.Len(t, gen.Generate("abc", -5), 1)

	got := gen.Generate("", 4)
	assert.Len(t, got, 4)
	for _, r := range got {
		assert.True(t, strings.ContainsRune("0123456789", r))
	}
}

func TestGenerate_SingleCharAlphabetIsDeterministic(t *testing.T) {
	gen := NewGenerator()

	assert.Equal(t, "xxxx", gen.Generate("x", 4))
}

func TestGenerate_ConcurrentUse(t *testing.T) {
	gen := NewGenerator()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if len(gen.Generate("abcdef", 8)) != 8 {
					t.Error("wrong length under concurrency")

					return
				}
			}
		}()
	}
	wg.Wait()
}
