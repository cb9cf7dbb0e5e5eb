package ports

import (
	"context"
	"io"

	"go.trai.ch/datanode/internal/core/domain"
)

// Executor defines the interface for running external commands inside a task directory.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd to completion, streaming its output to stdout and stderr.
	// It returns an error if the command cannot start or exits unsuccessfully.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
