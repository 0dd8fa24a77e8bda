package testutil

// FixedIDGenerator returns the same ID every time.
//
// This enables golden snapshot comparison: the same scenario compiled with
// the same FixedIDGenerator produces byte-identical output.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed generator. If id is empty, Generate
// returns "test-program".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-program"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements compiler.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
