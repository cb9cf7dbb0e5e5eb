package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/datanode/internal/app"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newTestApp(ctrl *gomock.Controller, loader *mocks.MockConfigLoader, log *mocks.MockLogger) *app.App {
	return app.New(loader, nil, nil, mocks.NewMockExecutor(ctrl), mocks.NewMockWatcher(ctrl), log).
		WithOutput(new(bytes.Buffer), new(bytes.Buffer))
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newTestApp(ctrl, mocks.NewMockConfigLoader(ctrl), mockLogger)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when a command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newTestApp(ctrl, mockLoader, mockLogger)

	loadErr := errors.New("load failed")
	mockLoader.EXPECT().Load(gomock.Any()).Return(domain.Settings{}, loadErr)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, loadErr)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"audit", t.TempDir()}, new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_RemovalNeedsConfirmation verifies that refused removals are reported.
func TestRun_RemovalNeedsConfirmation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newTestApp(ctrl, mocks.NewMockConfigLoader(ctrl), mockLogger)

	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrRemovalNotConfirmed)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"remove", "somewhere"}, new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
