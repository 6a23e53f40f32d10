package service

// CodeGenerator produces fixed-length random strings for verification codes,
// refresh-token ids and link aliases. Implementations must be safe for
// concurrent use; uniqueness is never assumed from randomness alone, the
// stores' write-time checks are the only guarantee.
type CodeGenerator interface {
	// Generate returns a string of exactly length characters, each drawn
	// independently and uniformly from alphabet with replacement.
	// Callers validate inputs; alphabet must be non-empty and length >= 1.
	Generate(alphabet string, length int) string
}
