package ports

// Verifier defines the interface for verifying that a task produced its outputs.
//
//go:generate mockgen -destination=mocks/verifier_mock.go -package=mocks -source=verifier.go
type Verifier interface {
	// VerifyOutputs returns the outputs, relative to dir, that do not exist.
	VerifyOutputs(dir string, outputs []string) ([]string, error)
}
