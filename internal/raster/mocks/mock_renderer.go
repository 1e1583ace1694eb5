package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, pdfPath, outDir string, firstPage, lastPage int) ([]string, error) {
	args := m.Called(ctx, pdfPath, outDir, firstPage, lastPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
