package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signdesk/internal/pdf"
)

type MockStamper struct {
	mock.Mock
}

func (m *MockStamper) Pages(ctx context.Context, data []byte) ([]pdf.Page, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pdf.Page), args.Error(1)
}

func (m *MockStamper) Stamp(ctx context.Context, data []byte, marks []pdf.Mark) ([]byte, error) {
	args := m.Called(ctx, data, marks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
